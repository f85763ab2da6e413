package assistant

// Label is a document-type category.
type Label string

const (
	LabelNDA         Label = "Non-Disclosure Agreement (NDA)"
	LabelLease       Label = "Lease Agreement"
	LabelEmployment  Label = "Employment Agreement"
	LabelService     Label = "Service Agreement"
	LabelVendor      Label = "Vendor Contract"
	LabelPartnership Label = "Partnership Agreement"
	LabelLicense     Label = "License Agreement"
	LabelPurchase    Label = "Purchase Agreement"
	LabelOther       Label = "Other"
)

// Labels is the closed label set in match order. The classification prompt
// and the response matcher both read it.
var Labels = [...]Label{
	LabelNDA,
	LabelLease,
	LabelEmployment,
	LabelService,
	LabelVendor,
	LabelPartnership,
	LabelLicense,
	LabelPurchase,
	LabelOther,
}

// MaxRawLabelRunes caps the raw model answer kept when no label matches.
const MaxRawLabelRunes = 100
