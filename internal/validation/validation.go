// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package validation checks a business profile before any generation
// request is made and reports problems per form field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"termsng/internal/models"
)

// Length limits for free-text profile fields.
const (
	maxNameLen        = 200
	maxEmailLen       = 254
	maxURLLen         = 2_048
	maxDescriptionLen = 5_000
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	urlPattern   = regexp.MustCompile(`^(https?://)?([\w-]+\.)+[\w-]+(/[\w\-./?%&=]*)?$`)
)

// messages maps a field and failed rule to the text shown next to the field.
var messages = map[string]map[string]string{
	"businessName":                 {"required": "Business Name is required."},
	"contactEmail":                 {"required": "Public Contact Email is required.", "contactemail": "Please enter a valid email format."},
	"servicesDescription":          {"required": "A description of your services is required."},
	"websiteUrl":                   {"weburl": "Please enter a valid URL (e.g., https://example.com)."},
	"otherBusinessType":            {"required_if": "Please specify your business type."},
	"userDataDescription":          {"required_if": "Please describe the user data you collect."},
	"refundPolicyDescription":      {"required_if": "Please describe your refund policy."},
	"disputeResolutionDescription": {"required_if": "Please describe your arbitration process."},
	"subscriptionTermsDescription": {"required_if": "Please describe your subscription terms."},
}

// Errors holds one message per invalid field, keyed by the field's JSON name.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

// Validator wraps a configured go-playground validator instance.
// It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the profile-specific rules registered.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("contactemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("weburl", func(fl validator.FieldLevel) bool {
		return urlPattern.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

// Profile validates p and returns Errors when any field is invalid.
// Checks run against a whitespace-trimmed copy; p itself is not modified.
func (val *Validator) Profile(p models.BusinessProfile) error {
	trimmed := trim(p)
	errs := Errors{}

	if err := val.v.Struct(trimmed); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate profile: %w", err)
		}
		for _, fe := range verrs {
			if _, seen := errs[fe.Field()]; seen {
				continue
			}
			msg, ok := messages[fe.Field()][fe.Tag()]
			if !ok {
				msg = "This field is invalid."
			}
			errs[fe.Field()] = msg
		}
	}

	if !trimmed.BusinessType.Valid() {
		errs["businessType"] = "Please select a valid business type."
	}

	checkLen(errs, "businessName", trimmed.BusinessName, maxNameLen)
	checkLen(errs, "otherBusinessType", trimmed.OtherBusinessType, maxNameLen)
	checkLen(errs, "contactEmail", trimmed.ContactEmail, maxEmailLen)
	checkLen(errs, "websiteUrl", trimmed.WebsiteURL, maxURLLen)
	checkLen(errs, "servicesDescription", trimmed.ServicesDescription, maxDescriptionLen)
	checkLen(errs, "userDataDescription", trimmed.UserDataDescription, maxDescriptionLen)
	checkLen(errs, "refundPolicyDescription", trimmed.RefundPolicyDescription, maxDescriptionLen)
	checkLen(errs, "disputeResolutionDescription", trimmed.DisputeResolutionDescription, maxDescriptionLen)
	checkLen(errs, "subscriptionTermsDescription", trimmed.SubscriptionTermsDescription, maxDescriptionLen)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// checkLen records a length error unless the field already has one.
func checkLen(errs Errors, field, value string, max int) {
	if _, seen := errs[field]; seen {
		return
	}
	if utf8.RuneCountInString(value) > max {
		errs[field] = fmt.Sprintf("This field is too long (max %d characters).", max)
	}
}

func trim(p models.BusinessProfile) models.BusinessProfile {
	p.BusinessName = strings.TrimSpace(p.BusinessName)
	p.WebsiteURL = strings.TrimSpace(p.WebsiteURL)
	p.OtherBusinessType = strings.TrimSpace(p.OtherBusinessType)
	p.ServicesDescription = strings.TrimSpace(p.ServicesDescription)
	p.ContactEmail = strings.TrimSpace(p.ContactEmail)
	p.UserDataDescription = strings.TrimSpace(p.UserDataDescription)
	p.RefundPolicyDescription = strings.TrimSpace(p.RefundPolicyDescription)
	p.DisputeResolutionDescription = strings.TrimSpace(p.DisputeResolutionDescription)
	p.SubscriptionTermsDescription = strings.TrimSpace(p.SubscriptionTermsDescription)
	return p
}
