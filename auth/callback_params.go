package auth

import "net/url"

// CallbackParams are the query parameters the provider sends to the
// redirect URI.
type CallbackParams struct {
	Code             string
	Error            string
	ErrorDescription string
}

func CallbackParamsFromValues(values url.Values) CallbackParams {
	return CallbackParams{
		Code:             values.Get("code"),
		Error:            values.Get("error"),
		ErrorDescription: values.Get("error_description"),
	}
}

// providerMessage is the most descriptive error text the provider sent.
func (p CallbackParams) providerMessage() string {
	if p.ErrorDescription != "" {
		return p.ErrorDescription
	}
	return p.Error
}
