// Package taskstore persists the task collection in a single JSON file.
//
// The store file is a plain JSON array:
//
//	[
//	    {
//	        "id": 1,
//	        "title": "Buy milk",
//	        "description": "No description",
//	        "status": "To Do",
//	        "assignee": "Unassigned"
//	    }
//	]
//
// # Persistence
//
// Every mutation reads the whole file, changes the slice in memory and
// rewrites the whole file. There is no journal and no partial update.
//
// # Missing or corrupt files
//
// A missing file and a file that does not parse are both read as an empty
// collection. [Load] reports which of the two happened through
// [LoadResult.State] so callers can log the recovery; [Store.List] never
// returns an error for either case.
//
// # File Format
//
// When writing the store file, the package uses:
//   - 4-space indentation
//   - Trailing newline
//   - Unescaped HTML and non-ASCII characters
//   - "[]" for an empty collection
package taskstore
