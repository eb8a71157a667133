package activity

import (
	"net/url"
)

// BuildContext assembles the sanitized context record for a mutation: HTTP
// method and path, query values, and the redacted body.
func BuildContext(method, path string, query url.Values, body map[string]any) ContextJSON {
	ctx := ContextJSON{
		"method": method,
		"path":   path,
	}
	if len(query) > 0 {
		q := make(map[string]any, len(query))
		for k, vs := range query {
			if IsRedactedKey(k) {
				continue
			}
			if len(vs) == 1 {
				q[k] = vs[0]
			} else {
				q[k] = vs
			}
		}
		ctx["query"] = q
	}
	if body != nil {
		ctx["body"] = Sanitize(map[string]any(body))
	}
	return ctx
}

// WithChangedFields attaches an update diff to a context record.
func (c ContextJSON) WithChangedFields(changes []FieldChange) ContextJSON {
	if len(changes) > 0 {
		c["changed_fields"] = changes
	}
	return c
}

// WithApprovalRequestID links a context record to the approval request whose
// decision produced the mutation.
func (c ContextJSON) WithApprovalRequestID(id int64) ContextJSON {
	if id > 0 {
		c["approval_request_id"] = id
	}
	return c
}
