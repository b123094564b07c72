package orders

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every lifecycle status in display order.
var Statuses = []Status{
	StatusPending, StatusConfirmed, StatusProcessing,
	StatusShipped, StatusDelivered, StatusCancelled,
}

// ValidStatus reports whether s is a member of the lifecycle enumeration.
// Any status is reachable from any status; transitions are an
// administrative override, there is no transition graph.
func ValidStatus(s Status) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

func ValidPaymentStatus(s PaymentStatus) bool {
	return s == PaymentPending || s == PaymentPaid || s == PaymentFailed
}

type PaymentMethod string

const (
	MethodOnline   PaymentMethod = "online"
	MethodDelivery PaymentMethod = "delivery"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	return m == MethodOnline || m == MethodDelivery
}
