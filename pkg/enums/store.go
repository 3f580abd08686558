package enums

// StoreStatus gates every tenant-scoped request.
type StoreStatus string

const (
	StoreStatusActive    StoreStatus = "ACTIVE"
	StoreStatusSuspended StoreStatus = "SUSPENDED"
)

var validStoreStatuses = []StoreStatus{
	StoreStatusActive,
	StoreStatusSuspended,
}

// String implements fmt.Stringer.
func (s StoreStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StoreStatus.
func (s StoreStatus) IsValid() bool {
	return contains(validStoreStatuses, s)
}

// ParseStoreStatus converts raw input into a StoreStatus.
func ParseStoreStatus(value string) (StoreStatus, error) {
	return parse("store status", validStoreStatuses, value)
}
