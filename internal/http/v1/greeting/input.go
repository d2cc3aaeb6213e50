package greeting

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	greetingsvc "github.com/janisto/path-greeter/internal/service/greeting"
)

// GetInput captures the single path segment to greet.
type GetInput struct {
	Name string `path:"name" doc:"Name to greet, taken verbatim from the path segment" example:"World" minLength:"1"`
}

// Resolve decodes segments the router matched in their escaped form, such as
// "hello%2dworld". An encoded "/" makes the name span two segments, which
// no route serves, so it is answered like any other unknown path.
func (i *GetInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	name, err := greetingsvc.Segment(i.Name, u.RawPath != "")
	switch {
	case errors.Is(err, greetingsvc.ErrSeparator):
		return []error{huma.Error404NotFound("resource not found")}
	case err != nil:
		// net/http rejects malformed escapes before routing; this only
		// triggers for requests built in-process with a hand-set RawPath.
		return []error{huma.Error400BadRequest("invalid path segment", &huma.ErrorDetail{
			Location: "path.name",
			Message:  "invalid percent-encoding",
			Value:    i.Name,
		})}
	}
	i.Name = name
	return nil
}
