package enums

// ShipmentStatus has no cancelled state; cancelling a shipment resets it to PENDING.
type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "PENDING"
	ShipmentStatusInTransit ShipmentStatus = "IN_TRANSIT"
	ShipmentStatusDelivered ShipmentStatus = "DELIVERED"
	ShipmentStatusReturned  ShipmentStatus = "RETURNED"
)

var validShipmentStatuses = []ShipmentStatus{
	ShipmentStatusPending,
	ShipmentStatusInTransit,
	ShipmentStatusDelivered,
	ShipmentStatusReturned,
}

func (s ShipmentStatus) String() string {
	return string(s)
}

func (s ShipmentStatus) IsValid() bool {
	return contains(validShipmentStatuses, s)
}

// OrderStatus returns the order status a shipment transition propagates to.
// The boolean is false for shipment statuses that leave the order untouched.
func (s ShipmentStatus) OrderStatus() (OrderStatus, bool) {
	switch s {
	case ShipmentStatusInTransit:
		return OrderStatusShipped, true
	case ShipmentStatusDelivered:
		return OrderStatusDelivered, true
	case ShipmentStatusReturned:
		return OrderStatusReturned, true
	default:
		return "", false
	}
}

func ParseShipmentStatus(value string) (ShipmentStatus, error) {
	return parse("shipment status", validShipmentStatuses, value)
}

type Carrier string

const (
	CarrierFedEx Carrier = "FEDEX"
	CarrierUPS   Carrier = "UPS"
	CarrierDHL   Carrier = "DHL"
	CarrierUSPS  Carrier = "USPS"
)

var validCarriers = []Carrier{
	CarrierFedEx,
	CarrierUPS,
	CarrierDHL,
	CarrierUSPS,
}

func (c Carrier) String() string {
	return string(c)
}

func (c Carrier) IsValid() bool {
	return contains(validCarriers, c)
}

func ParseCarrier(value string) (Carrier, error) {
	return parse("carrier", validCarriers, value)
}
