package greeting

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/path-greeter/internal/platform/logging"
	greetingsvc "github.com/janisto/path-greeter/internal/service/greeting"
)

const contentTypeText = "text/plain; charset=utf-8"

// Register wires the greeting route into the provided API router.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-greeting",
		Method:      http.MethodGet,
		Path:        "/{name}",
		Summary:     "Greet the name in the path",
		Description: "Returns `Hello ` followed by the path segment, as plain text.",
		Tags:        []string{"Greeting"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Greeting",
				Content: map[string]*huma.MediaType{
					"text/plain": {
						Schema: &huma.Schema{Type: huma.TypeString, Examples: []any{"Hello World"}},
					},
				},
			},
		},
	}, getHandler)
}

func getHandler(ctx context.Context, input *GetInput) (*GetOutput, error) {
	applog.LogInfo(ctx, "greeting", zap.Int("nameLength", len(input.Name)))
	return &GetOutput{
		ContentType: contentTypeText,
		Body:        []byte(greetingsvc.Greet(input.Name)),
	}, nil
}
