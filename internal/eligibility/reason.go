package eligibility

// Reason tags the terminal branch a request exited on. The string form is
// only rendered at the serialization boundary; everything inside the
// pipeline branches on the tag.
type Reason int

const (
	ReasonAllowed Reason = iota
	ReasonRiderNotFound
	ReasonBlocked
	ReasonLowBalance
	ReasonOutOfServiceArea
	ReasonNoBikes
)

// Message is the caller-facing message for the decision envelope. These
// strings are part of the API contract.
func (r Reason) Message() string {
	switch r {
	case ReasonAllowed:
		return "Success"
	case ReasonRiderNotFound:
		return "rider not found"
	case ReasonBlocked:
		return "account blocked"
	case ReasonLowBalance:
		return "balance too low"
	case ReasonOutOfServiceArea:
		return "not serviceable in this area"
	case ReasonNoBikes:
		return "no bikes available"
	}
	return "unknown"
}

// Label is the metrics label for the decision counter.
func (r Reason) Label() string {
	switch r {
	case ReasonAllowed:
		return "allowed"
	case ReasonRiderNotFound:
		return "rider_not_found"
	case ReasonBlocked:
		return "account_blocked"
	case ReasonLowBalance:
		return "low_balance"
	case ReasonOutOfServiceArea:
		return "out_of_service_area"
	case ReasonNoBikes:
		return "no_bikes"
	}
	return "unknown"
}
