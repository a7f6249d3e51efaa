package service

const (
	DefaultMaxAccountsPerUser = 10
	DefaultCancelWindowDays   = 365

	daysPerYear = 365
)

// Limits are the business constants the services enforce.
type Limits struct {
	// MaxAccountsPerUser caps the number of accounts one user may own. Unregistered
	// accounts still count.
	MaxAccountsPerUser int
	// CancelWindowDays is how long after a transaction it may still be cancelled.
	CancelWindowDays int
}

func DefaultLimits() Limits {
	return Limits{
		MaxAccountsPerUser: DefaultMaxAccountsPerUser,
		CancelWindowDays:   DefaultCancelWindowDays,
	}
}

// withDefaults replaces non-positive values with the defaults.
func (l Limits) withDefaults() Limits {
	if l.MaxAccountsPerUser <= 0 {
		l.MaxAccountsPerUser = DefaultMaxAccountsPerUser
	}
	if l.CancelWindowDays <= 0 {
		l.CancelWindowDays = DefaultCancelWindowDays
	}
	return l
}
