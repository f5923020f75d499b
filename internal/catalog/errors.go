// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"errors"
	"fmt"

	"github.com/taibuivan/mediacatalog/internal/platform/apperr"
)

// ErrDataCorruption marks a stored relation that points at a row which no
// longer exists. It is reported to clients as a generic internal error.
var ErrDataCorruption = errors.New("catalog: data corruption")

// corrupted wraps [ErrDataCorruption] with context into a 500 [apperr.AppError].
func corrupted(format string, args ...any) error {
	return apperr.Internal(fmt.Errorf("%w: %s", ErrDataCorruption, fmt.Sprintf(format, args...)))
}

func notFound(kind Kind) error {
	return apperr.NotFound(kind.Resource())
}

// missingReference reports a write whose field references a row of kind that does not exist.
func missingReference(field string, kind Kind, id int) error {
	return apperr.ForeignKey(field, fmt.Sprintf("%s %d does not exist", kind.Resource(), id))
}
