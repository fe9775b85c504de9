// Package compiler turns a Shape Tree into the two artifacts a typed query
// needs: the GraphQL document text and the validator for the response data.
//
// Both compilers walk the same tree independently and agree on its structure:
//
//	shape.Object(
//	    shape.F("user", shape.Object(
//	        shape.F("name", shape.Leaf(validate.String())),
//	        shape.F("friends", shape.Array(shape.Object(
//	            shape.F("name", shape.Leaf(validate.String())),
//	        ))),
//	    ).WithArgs(shape.A("id", "$id"))),
//	)
//
// compiles to the selection
//
//	user(id: $id) { name friends { name } }
//
// and to a validator accepting {"user": {"name": "...", "friends": [{"name": "..."}]}}.
//
// Sibling fields are emitted in tree order and arguments in declaration order,
// so compiling the same tree always yields the same text. Malformed trees (nil
// nodes, empty selections, invalid or duplicate names, foreign Node
// implementations) are rejected with *Error before any text is returned.
package compiler
