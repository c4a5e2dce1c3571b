package extract

import "errors"

// ErrInvalidExpression is returned when a path selector is not valid XPath.
var ErrInvalidExpression = errors.New("invalid xpath expression")
