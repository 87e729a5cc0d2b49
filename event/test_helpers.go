package event

import "github.com/stretchr/testify/mock"

// MatchEvent creates a custom matcher for event arguments in mocks
func MatchEvent(matcher func(Event) bool) interface{} {
	return mock.MatchedBy(matcher)
}

// MatchAttempt creates a custom matcher for delivery attempt arguments in mocks
func MatchAttempt(matcher func(DeliveryAttempt) bool) interface{} {
	return mock.MatchedBy(matcher)
}
