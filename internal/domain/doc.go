// Package domain contains the core business entities, value objects, and
// domain logic of the review service: vocabulary items, per-learner schedule
// state and the closed set of recall grades. It is independent of any
// specific infrastructure or delivery mechanism.
package domain
