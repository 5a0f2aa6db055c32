// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package prompt turns a business profile into the instruction document
// sent to the generation service. Build is pure: the same profile always
// yields the same prompt.
package prompt

import (
	"fmt"
	"strings"

	"termsng/internal/models"
)

const (
	ndprName  = "Nigerian Data Protection Regulation 2019"
	fccpaName = "Federal Competition and Consumer Protection Act 2018"
)

// IsPremium reports whether the profile requests any optional clause.
// A premium profile produces a pro document that starts locked.
func IsPremium(p models.BusinessProfile) bool {
	return p.CollectsUserData || p.HasRefundPolicy || p.HasDisputeResolution || p.HasSubscriptionTerms
}

// EffectiveBusinessType returns the label used in the prompt: the free-text
// override for "Other" when one was given, otherwise the type itself.
func EffectiveBusinessType(p models.BusinessProfile) string {
	if p.BusinessType == models.BusinessTypeOther && p.OtherBusinessType != "" {
		return p.OtherBusinessType
	}
	return string(p.BusinessType)
}

// Build assembles the full instruction document for a profile.
func Build(p models.BusinessProfile) string {
	var b strings.Builder

	b.WriteString("Act as a legal expert specializing in Nigerian business law. Your task is to generate a comprehensive, well-structured Terms of Service (TOS) document for a Nigerian-based business, which may be online, offline, or both.\n\n")

	b.WriteString("**IMPORTANT INSTRUCTIONS:**\n")
	b.WriteString("1.  The governing law MUST be explicitly stated as \"the laws of the Federal Republic of Nigeria\".\n")
	b.WriteString(complianceInstruction(p))
	b.WriteString("3.  The tone should be professional, clear, and easy to understand. Avoid overly complex legal jargon where possible.\n")
	b.WriteString("4.  Use simple HTML for formatting. Each section heading MUST be numerically ordered and formatted inside an <h2> tag. For example: \"<h2>1. Introduction</h2>\", \"<h2>2. Acceptance of Terms</h2>\", and so on. This numbering is critical for the document's structure. Use <p> tags for paragraphs, <strong> for bold text, and <ul>/<ol>/<li> for lists.\n")
	b.WriteString("5.  Generate ONLY the raw HTML for the TOS document. Do not include <!DOCTYPE>, <html>, <head>, or <body> tags. Do not include any introductory or concluding remarks like \"Here is your TOS document\".\n")
	b.WriteString("6.  Include a strong disclaimer stating that this document is a template and does not constitute legal advice, and the business should consult a qualified legal professional. This disclaimer should be wrapped in its own <p> tag with <strong> emphasis.\n")
	b.WriteString("7.  For the 'User Conduct', 'Intellectual Property Rights', and 'Limitation of Liability' sections specifically, use exceptionally clear and concise language. Break down complex concepts into simple terms to ensure they are easily understood by a non-legal audience.\n")
	b.WriteString(privacyInstruction(p))
	b.WriteString("\n")

	website := p.WebsiteURL
	if website == "" {
		website = "Not provided."
	}
	b.WriteString("**Business Details:**\n")
	fmt.Fprintf(&b, "*   **Business Name:** %s\n", p.BusinessName)
	fmt.Fprintf(&b, "*   **Website/App URL:** %s\n", website)
	fmt.Fprintf(&b, "*   **Business Type:** %s\n", EffectiveBusinessType(p))
	fmt.Fprintf(&b, "*   **Description of Services/Products:** %s\n", p.ServicesDescription)
	fmt.Fprintf(&b, "*   **Contact Email:** %s\n\n", p.ContactEmail)

	collects, dataDescription := "No", "Not applicable."
	if p.CollectsUserData {
		collects, dataDescription = "Yes", p.UserDataDescription
	}
	b.WriteString("**User Data Collection:**\n")
	fmt.Fprintf(&b, "*   **Does it collect user data?** %s\n", collects)
	fmt.Fprintf(&b, "*   **Description of data collected:** %s\n\n", dataDescription)

	b.WriteString("**Required Sections to Include:**\n")
	b.WriteString("Generate the TOS with the following sections in a logical order. The section numbers MUST be sequential (1, 2, 3, etc.).\n")
	b.WriteString("- Introduction\n")
	b.WriteString("- Acceptance of Terms\n")
	b.WriteString("- Description of Service/Products (This section must be clear and detailed, in line with FCCPA 2018 requirements.)\n")
	b.WriteString("- User Accounts (if applicable, otherwise omit)\n")
	b.WriteString("- User Conduct and Prohibited Activities\n")
	b.WriteString("- Intellectual Property Rights\n")
	b.WriteString("- User-Generated Content (if applicable, otherwise omit)\n")
	b.WriteString("- Privacy Policy\n")

	if clauses := optionalClauses(p); clauses != "" {
		b.WriteString("\n**Additional Required Sections (Based on User Input):**\n")
		b.WriteString("You MUST also include sections for the following topics. Integrate them logically with the sections above and ensure numbering remains sequential.\n")
		b.WriteString(clauses)
		b.WriteString("\n")
	}

	b.WriteString("- Termination\n")
	b.WriteString(warrantiesInstruction(p))
	b.WriteString("- Limitation of Liability\n")
	b.WriteString("- Indemnification\n")
	b.WriteString("- Governing Law and Jurisdiction (Must be Federal Republic of Nigeria)\n")
	b.WriteString("- Changes to Terms\n")
	b.WriteString("- Contact Information\n")
	b.WriteString("- Legal Disclaimer (reiterate that this is not legal advice)\n\n")

	b.WriteString("Now, generate the complete Terms of Service document in HTML based on all these details.\n")

	return b.String()
}

func complianceInstruction(p models.BusinessProfile) string {
	ndpr := ""
	if p.CollectsUserData {
		ndpr = "the " + ndprName + " (NDPR 2019), "
	}
	return fmt.Sprintf("2.  Ensure all clauses are compliant with key Nigerian legislation, including the %s (FCCPA 2018), %sand the principles of Nigerian Contract Law.\n", fccpaName, ndpr)
}

func privacyInstruction(p models.BusinessProfile) string {
	if p.CollectsUserData {
		return "8.  If the business collects user data, the Privacy Policy section MUST explicitly state that data handling complies with the " + ndprName + " (NDPR).\n"
	}
	// A no-data prompt never names the regulation, not even to forbid it.
	return "8.  The business has indicated it does not collect user data. The Privacy Policy section should be very brief, stating that no personal user data is collected. You MUST NOT mention any data protection regulation, by name or by acronym, anywhere in the document.\n"
}

func warrantiesInstruction(p models.BusinessProfile) string {
	if IsPremium(p) {
		return "- Disclaimer of Warranties (Ensure this section is drafted in compliance with consumer rights under the FCCPA 2018.)\n"
	}
	return "- Disclaimer of Warranties (Provide a standard 'as is' disclaimer. For this basic version, you MUST NOT include any text that refers to not limiting statutory warranties or consumer rights under the FCCPA 2018.)\n"
}

// optionalClauses renders the requested optional sections in a fixed order:
// subscription terms, refund policy, then dispute resolution.
func optionalClauses(p models.BusinessProfile) string {
	var b strings.Builder
	if p.HasSubscriptionTerms {
		fmt.Fprintf(&b, "- **Subscription Terms:** The business offers subscriptions. Include a section that covers billing cycles, cancellation policies, and any trial periods. Use these user-provided details as a guide: \"%s\".\n", p.SubscriptionTermsDescription)
	}
	if p.HasRefundPolicy {
		fmt.Fprintf(&b, "- **Refund Policy:** The business has a specific refund policy. Add a section detailing this policy, ensuring it is clear, prominent, and unambiguous to comply with the %s (FCCPA). Use these user-provided details as a guide: \"%s\".\n", fccpaName, p.RefundPolicyDescription)
	}
	if p.HasDisputeResolution {
		fmt.Fprintf(&b, "- **Dispute Resolution by Arbitration:** The business requires a binding arbitration clause. You MUST create a section titled \"Dispute Resolution by Arbitration\". This section must state that disputes arising from the Terms will be resolved through binding arbitration, making it a formal alternative to court proceedings. The clause MUST be drafted in accordance with and explicitly reference the **Nigerian Arbitration and Mediation Act, 2023**. Use the following user-provided details to outline the process: \"%s\".\n", p.DisputeResolutionDescription)
	}
	return b.String()
}
