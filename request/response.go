package request

import "resty.dev/v3"

// Response wraps a resty.Response with the Ok() convenience check the
// polling transport uses to distinguish a successful fetch from an error.
type Response struct {
	*resty.Response
}

// Ok reports whether the response status code is in the 2xx range.
func (r *Response) Ok() bool {
	code := r.StatusCode()
	return code >= 200 && code <= 299
}
