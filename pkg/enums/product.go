package enums

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusDraft    ProductStatus = "DRAFT"
	ProductStatusArchived ProductStatus = "ARCHIVED"
)

var validProductStatuses = []ProductStatus{
	ProductStatusActive,
	ProductStatusDraft,
	ProductStatusArchived,
}

func (p ProductStatus) String() string {
	return string(p)
}

func (p ProductStatus) IsValid() bool {
	return contains(validProductStatuses, p)
}

func ParseProductStatus(value string) (ProductStatus, error) {
	return parse("product status", validProductStatuses, value)
}
