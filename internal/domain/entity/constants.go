package entity

// Status constants for Expense
const (
	StatusDraft           = "DRAFT"
	StatusSubmitted       = "SUBMITTED"
	StatusWaitingApproval = "WAITING_APPROVAL"
	StatusApproved        = "APPROVED"
	StatusRejected        = "REJECTED"
	StatusPaid            = "PAID"
)

// Status constants for ApprovalStep
const (
	StepStatusPending  = "PENDING"
	StepStatusApproved = "APPROVED"
	StepStatusRejected = "REJECTED"
)

// Expense category constants
const (
	CategoryTravel         = "TRAVEL"
	CategoryMeal           = "MEAL"
	CategoryAccommodation  = "ACCOMMODATION"
	CategoryEquipment      = "EQUIPMENT"
	CategoryTransportation = "TRANSPORTATION"
	CategoryEntertainment  = "ENTERTAINMENT"
	CategoryCommunication  = "COMMUNICATION"
	CategoryOther          = "OTHER"
)

// Categories lists every valid expense category.
var Categories = []string{
	CategoryTravel,
	CategoryMeal,
	CategoryAccommodation,
	CategoryEquipment,
	CategoryTransportation,
	CategoryEntertainment,
	CategoryCommunication,
	CategoryOther,
}

// IsValidCategory returns true if the category is one of the known categories.
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Approver kind constants for ApproverSpec
const (
	ApproverSpecificUser   = "SPECIFIC_USER"
	ApproverManager        = "MANAGER"
	ApproverDepartmentHead = "DEPARTMENT_HEAD"
	ApproverCFO            = "CFO"
	ApproverCEO            = "CEO"
)

// Approval action constants
const (
	ActionApprove = "APPROVE"
	ActionReject  = "REJECT"
)

// User role constants
const (
	RoleEmployee = "EMPLOYEE"
	RoleManager  = "MANAGER"
	RoleFinance  = "FINANCE"
	RoleAdmin    = "ADMIN"
)
