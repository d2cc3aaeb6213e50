package greeting

// GetOutput is a plain-text greeting.
type GetOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}
