package enums

type CouponType string

const (
	CouponTypePercentage CouponType = "PERCENTAGE"
	CouponTypeFixed      CouponType = "FIXED"
)

var validCouponTypes = []CouponType{
	CouponTypePercentage,
	CouponTypeFixed,
}

func (c CouponType) String() string {
	return string(c)
}

func (c CouponType) IsValid() bool {
	return contains(validCouponTypes, c)
}

func ParseCouponType(value string) (CouponType, error) {
	return parse("coupon type", validCouponTypes, value)
}

type CouponStatus string

const (
	CouponStatusActive   CouponStatus = "ACTIVE"
	CouponStatusInactive CouponStatus = "INACTIVE"
	CouponStatusExpired  CouponStatus = "EXPIRED"
)

var validCouponStatuses = []CouponStatus{
	CouponStatusActive,
	CouponStatusInactive,
	CouponStatusExpired,
}

func (c CouponStatus) String() string {
	return string(c)
}

func (c CouponStatus) IsValid() bool {
	return contains(validCouponStatuses, c)
}

func ParseCouponStatus(value string) (CouponStatus, error) {
	return parse("coupon status", validCouponStatuses, value)
}
