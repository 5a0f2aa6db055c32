// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures shared across the service:
// the business profile submitted by users, generated and saved documents,
// and user accounts.
package models

// BusinessType is the kind of business a Terms of Service is drafted for.
type BusinessType string

const (
	BusinessTypeEcommerce   BusinessType = "E-commerce"
	BusinessTypeSaaS        BusinessType = "SaaS (Software as a Service)"
	BusinessTypeRetail      BusinessType = "Retail / Physical Store"
	BusinessTypeService     BusinessType = "Service Provider (e.g., consultancy, agency)"
	BusinessTypeMedia       BusinessType = "Blog / Media Publisher"
	BusinessTypeHospitality BusinessType = "Hospitality (e.g., Restaurant, Hotel)"
	BusinessTypeMobileApp   BusinessType = "Mobile App"
	BusinessTypeNonProfit   BusinessType = "Non-Profit Organization"
	BusinessTypeOther       BusinessType = "Other"
)

// BusinessTypes lists every selectable business type in display order.
var BusinessTypes = []BusinessType{
	BusinessTypeEcommerce,
	BusinessTypeSaaS,
	BusinessTypeRetail,
	BusinessTypeService,
	BusinessTypeMedia,
	BusinessTypeHospitality,
	BusinessTypeMobileApp,
	BusinessTypeNonProfit,
	BusinessTypeOther,
}

// Valid reports whether t is one of the known business types.
func (t BusinessType) Valid() bool {
	for _, bt := range BusinessTypes {
		if bt == t {
			return true
		}
	}
	return false
}

// BusinessProfile is the form a user fills in to request a document.
// Each optional clause flag is paired with a free-text description that
// must be non-empty when the flag is set.
type BusinessProfile struct {
	BusinessName        string       `json:"businessName" yaml:"businessName" validate:"required"`
	WebsiteURL          string       `json:"websiteUrl" yaml:"websiteUrl" validate:"omitempty,weburl"`
	BusinessType        BusinessType `json:"businessType" yaml:"businessType"`
	OtherBusinessType   string       `json:"otherBusinessType,omitempty" yaml:"otherBusinessType" validate:"required_if=BusinessType Other"`
	ServicesDescription string       `json:"servicesDescription" yaml:"servicesDescription" validate:"required"`
	ContactEmail        string       `json:"contactEmail" yaml:"contactEmail" validate:"required,contactemail"`

	CollectsUserData    bool   `json:"collectsUserData" yaml:"collectsUserData"`
	UserDataDescription string `json:"userDataDescription" yaml:"userDataDescription" validate:"required_if=CollectsUserData true"`

	HasRefundPolicy         bool   `json:"hasRefundPolicy" yaml:"hasRefundPolicy"`
	RefundPolicyDescription string `json:"refundPolicyDescription" yaml:"refundPolicyDescription" validate:"required_if=HasRefundPolicy true"`

	HasDisputeResolution         bool   `json:"hasDisputeResolution" yaml:"hasDisputeResolution"`
	DisputeResolutionDescription string `json:"disputeResolutionDescription" yaml:"disputeResolutionDescription" validate:"required_if=HasDisputeResolution true"`

	HasSubscriptionTerms         bool   `json:"hasSubscriptionTerms" yaml:"hasSubscriptionTerms"`
	SubscriptionTermsDescription string `json:"subscriptionTermsDescription" yaml:"subscriptionTermsDescription" validate:"required_if=HasSubscriptionTerms true"`
}

// DefaultProfile returns the empty form shown to a new visitor.
func DefaultProfile() BusinessProfile {
	return BusinessProfile{BusinessType: BusinessTypeService}
}
