// Package parser splits multi-statement ClickHouse SQL bodies into the
// individual statements that are sent to the server one at a time.
//
// Splitting is driven by a participle lexer rather than a plain strings.Split
// so that semicolons inside string literals, quoted identifiers and comments
// do not end a statement. Comments ("--" and "#" line comments, and block
// comments which may nest) are removed, and empty fragments (for example those
// produced by a trailing ";" or ";;") are discarded.
//
// Example usage:
//
//	stmts, err := parser.SplitStatements(`
//		-- create the events table
//		CREATE TABLE events (id UInt64, msg String) ENGINE = MergeTree() ORDER BY id;
//		INSERT INTO events VALUES (1, 'a;b');
//	`)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// stmts[0] == "CREATE TABLE events (id UInt64, msg String) ENGINE = MergeTree() ORDER BY id"
//	// stmts[1] == "INSERT INTO events VALUES (1, 'a;b')"
package parser
