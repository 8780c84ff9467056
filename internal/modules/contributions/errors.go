package contributions

import "errors"

var ErrNotFound = errors.New("contribution not found")
