// Command storyctl is an administration tool for a Storyhub database.
//
// Usage:
//
//	storyctl [--database-dir DIR] <command>
//
// Commands:
//
//	status                      Print the schema version and row counts.
//
//	reset-password <username>   Set a new password for a user. The password
//	                            is prompted for twice without echo, or read
//	                            as two lines from stdin when it is not a
//	                            terminal. All of the user's sessions are
//	                            invalidated.
//
//	delete-author <pen-name>    Delete an author profile along with its
//	                            books, chapters, albums and notes. The linked
//	                            user account is kept.
//
// Environment:
//
//	DATABASE_DIR - Path to database directory (default: ./data)
package main
