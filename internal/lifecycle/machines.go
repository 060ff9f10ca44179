package lifecycle

import (
	"errors"

	"github.com/amplio-agency/amplio/internal/policy"
)

// Campaign statuses. Approval is a companion flag: ACTIVE requires it, and
// only the dedicated approve action flips it, atomically with the status.
const (
	CampaignDraft     State = "DRAFT"
	CampaignActive    State = "ACTIVE"
	CampaignCompleted State = "COMPLETED"
)

// Campaign-influencer assignment progression, strictly forward.
const (
	AssignmentAssigned  State = "ASSIGNED"
	AssignmentSubmitted State = "CONTENT_SUBMITTED"
	AssignmentApproved  State = "APPROVED"
	AssignmentPosted    State = "POSTED"
)

// Content submission review outcomes. Both outcomes are terminal.
const (
	SubmissionPending  State = "PENDING"
	SubmissionApproved State = "APPROVED"
	SubmissionRejected State = "REJECTED"
)

// Payment statuses. PAID is terminal; corrections are issued as new payments.
const (
	PaymentPending State = "PENDING"
	PaymentPaid    State = "PAID"
	PaymentHold    State = "HOLD"
)

// Influencer vetting states.
const (
	InfluencerPending  State = "PENDING"
	InfluencerApproved State = "APPROVED"
)

// Admin account states.
const (
	AdminUserActive  State = "ACTIVE"
	AdminUserDeleted State = "DELETED"
)

// Well-known brand pipeline stages. The stage graph is open: any tag that
// passes ValidateStageTag is accepted, these are the ones the console seeds.
const (
	BrandLead        State = "LEAD"
	BrandContacted   State = "CONTACTED"
	BrandNegotiation State = "NEGOTIATION"
	BrandClosed      State = "CLOSED"
)

// Brand returns the brand pipeline machine. The graph is deliberately open:
// any well-formed stage tag is reachable from any other, gated on brand:edit.
func Brand() *Machine {
	return NewOpen("brand", ActionStage, Arc{
		Resource:   policy.ResourceBrand,
		Permission: policy.ActionEdit,
	})
}

// Campaign returns the campaign status machine.
func Campaign() *Machine {
	edit := func(next State) Arc {
		return Arc{Next: next, Resource: policy.ResourceCampaign, Permission: policy.ActionEdit}
	}
	activeNeedsApproval := func(snap Snapshot) error {
		if !snap.Approved {
			return errors.New("campaign must be approved before it can be activated")
		}
		return nil
	}
	m := New("campaign")
	m.Allow(CampaignDraft, ActionApprove, Arc{
		Next:         CampaignActive,
		Resource:     policy.ResourceCampaign,
		Permission:   policy.ActionApprove,
		SetsApproved: true,
	})
	activeArc := edit(CampaignActive)
	activeArc.Guard = activeNeedsApproval
	m.Allow(CampaignDraft, ActionEdit, activeArc)
	m.Allow(CampaignDraft, ActionEdit, edit(CampaignCompleted))
	m.Allow(CampaignActive, ActionEdit, edit(CampaignCompleted))
	return m
}

// Assignment returns the campaign-influencer machine, forward-only.
func Assignment() *Machine {
	arc := func(next State) Arc {
		return Arc{Next: next, Resource: policy.ResourceAssignment, Permission: policy.ActionEdit}
	}
	m := New("assignment")
	m.Allow(AssignmentAssigned, ActionEdit, arc(AssignmentSubmitted))
	m.Allow(AssignmentSubmitted, ActionEdit, arc(AssignmentApproved))
	m.Allow(AssignmentApproved, ActionEdit, arc(AssignmentPosted))
	return m
}

// Submission returns the content review machine. Reviewer feedback is stored
// atomically with the outcome.
func Submission() *Machine {
	arc := func(next State) Arc {
		return Arc{
			Next:          next,
			Resource:      policy.ResourceContent,
			Permission:    policy.ActionReview,
			TakesFeedback: true,
		}
	}
	m := New("submission")
	m.Allow(SubmissionPending, ActionReview, arc(SubmissionApproved))
	m.Allow(SubmissionPending, ActionReview, arc(SubmissionRejected))
	return m
}

// Payment returns the payment status machine. Reaching PAID fires invoice
// generation.
func Payment() *Machine {
	arc := func(next State, effect Effect) Arc {
		return Arc{Next: next, Resource: policy.ResourcePayment, Permission: policy.ActionEdit, Effect: effect}
	}
	m := New("payment")
	m.Allow(PaymentPending, ActionEdit, arc(PaymentPaid, EffectGenerateInvoice))
	m.Allow(PaymentPending, ActionEdit, arc(PaymentHold, EffectNone))
	m.Allow(PaymentHold, ActionEdit, arc(PaymentPending, EffectNone))
	m.Allow(PaymentHold, ActionEdit, arc(PaymentPaid, EffectGenerateInvoice))
	return m
}

// Influencer returns the influencer vetting machine.
func Influencer() *Machine {
	m := New("influencer")
	m.Allow(InfluencerPending, ActionApprove, Arc{
		Next:       InfluencerApproved,
		Resource:   policy.ResourceInfluencer,
		Permission: policy.ActionApprove,
	})
	return m
}

// AdminUser returns the administrative account machine. Deletion is a
// transition so it runs through the same gate and audit path as everything
// else; the self-protection rule is checked before the permission table.
func AdminUser() *Machine {
	m := New("admin-user")
	m.Allow(AdminUserActive, ActionDelete, Arc{
		Next:       AdminUserDeleted,
		Resource:   policy.ResourceAdminUser,
		Permission: policy.ActionDelete,
	})
	return m
}
