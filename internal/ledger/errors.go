package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingMasterAccount matches any *MissingMasterAccountError.
var ErrMissingMasterAccount = errors.New("missing master account")

// MissingMasterAccountError names the standard account codes absent from
// the tenant's chart of accounts. Generation cannot proceed without them.
type MissingMasterAccountError struct {
	Codes []string
}

func (e *MissingMasterAccountError) Error() string {
	return fmt.Sprintf("%s: chart of accounts has no %s", ErrMissingMasterAccount, strings.Join(e.Codes, ", "))
}

func (e *MissingMasterAccountError) Is(target error) bool {
	return target == ErrMissingMasterAccount
}
