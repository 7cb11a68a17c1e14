package render

import (
	"context"

	"github.com/goliatone/go-synctemplate/pkg/layout"
)

// Renderer converts a layout tree into a byte representation (HTML, JSON...).
//
// Implementations must call options.BeforeNode for every node they visit,
// before producing that node's own output, and should pass nodes of kind
// KindEmbed to options.Embed when it is set.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, tree layout.Tree, options RenderOptions) ([]byte, error)
}

// KindEmbed is the node kind that places another template instance inside a
// layout.
const KindEmbed = "sync-template"
