package language

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

type (
	QueryDocument       = ast.QueryDocument
	OperationDefinition = ast.OperationDefinition
	Schema              = ast.Schema
	Type                = ast.Type
	Path                = ast.Path
	PathName            = ast.PathName
	PathIndex           = ast.PathIndex
	Error               = gqlerror.Error
	ErrorList           = gqlerror.List
	Location            = gqlerror.Location
)
