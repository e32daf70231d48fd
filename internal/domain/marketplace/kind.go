package marketplace

import "strings"

// ListingKind is the commercial mode of a listing
type ListingKind string

const (
	ListingKindSale   ListingKind = "SALE"
	ListingKindRental ListingKind = "RENTAL"
	ListingKindSwap   ListingKind = "SWAP"
)

// IsValid checks if the kind is a valid ListingKind
func (k ListingKind) IsValid() bool {
	switch k {
	case ListingKindSale, ListingKindRental, ListingKindSwap:
		return true
	}
	return false
}

// String returns the string representation of ListingKind
func (k ListingKind) String() string {
	return string(k)
}

// ParseListingKind converts boundary input into a ListingKind.
// Matching is case-insensitive and "rent" is accepted for rentals.
func ParseListingKind(s string) (ListingKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SALE":
		return ListingKindSale, nil
	case "RENTAL", "RENT":
		return ListingKindRental, nil
	case "SWAP":
		return ListingKindSwap, nil
	}
	return "", ErrInvalidKind
}

// TransactionKind is the kind of a recorded commitment
type TransactionKind string

const (
	TransactionKindSale   TransactionKind = "SALE"
	TransactionKindRental TransactionKind = "RENTAL"
)

// IsValid checks if the kind is a valid TransactionKind
func (k TransactionKind) IsValid() bool {
	return k == TransactionKindSale || k == TransactionKindRental
}

// String returns the string representation of TransactionKind
func (k TransactionKind) String() string {
	return string(k)
}

// TransactionStatus represents the status of a marketplace transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// IsValid checks if the status is a valid TransactionStatus
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of TransactionStatus
func (s TransactionStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s TransactionStatus) CanTransitionTo(target TransactionStatus) bool {
	switch s {
	case TransactionStatusPending:
		return target == TransactionStatusCompleted || target == TransactionStatusCancelled
	case TransactionStatusCompleted, TransactionStatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusCancelled
}

// OfferStatus represents the status of a swap offer
type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "PENDING"
	OfferStatusAccepted OfferStatus = "ACCEPTED"
	OfferStatusRejected OfferStatus = "REJECTED"
)

// IsValid checks if the status is a valid OfferStatus
func (s OfferStatus) IsValid() bool {
	switch s {
	case OfferStatusPending, OfferStatusAccepted, OfferStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of OfferStatus
func (s OfferStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OfferStatus) CanTransitionTo(target OfferStatus) bool {
	if s == OfferStatusPending {
		return target == OfferStatusAccepted || target == OfferStatusRejected
	}
	return false
}

// ResponseAction is the lister's answer to a rental request or swap offer
type ResponseAction string

const (
	ResponseAccept ResponseAction = "ACCEPT"
	ResponseReject ResponseAction = "REJECT"
)

// ParseResponseAction converts boundary input into a ResponseAction
func ParseResponseAction(s string) (ResponseAction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ACCEPT":
		return ResponseAccept, nil
	case "REJECT":
		return ResponseReject, nil
	}
	return "", ErrInvalidAction
}
