package transform

import (
	"github.com/richtext/docmodel/test/builder"
)

var (
	schema = builder.Schema
	doc    = builder.Doc
	p      = builder.P
	h1     = builder.H1
)
