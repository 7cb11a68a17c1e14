package vanilla

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	editorPolicyOnce sync.Once
	editorPolicy     *bluemonday.Policy
)

// EditorPolicy returns the policy applied to rich text editor content: user
// generated content rules plus class attributes on common text elements.
func EditorPolicy() *bluemonday.Policy {
	editorPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").OnElements("p", "span", "div", "ul", "ol", "li", "blockquote", "h2", "h3", "h4")
		policy.RequireNoFollowOnLinks(false)
		policy.AddTargetBlankToFullyQualifiedLinks(false)
		editorPolicy = policy
	})
	return editorPolicy
}

func sanitizeMarkup(policy *bluemonday.Policy, raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || policy == nil {
		return trimmed
	}
	return strings.TrimSpace(policy.Sanitize(trimmed))
}
