package mapping

import (
	"fmt"
	"sort"
	"strings"

	"github.com/parthpandya1729/giarecon/internal/model"
	"github.com/parthpandya1729/giarecon/pkg/errors"
)

// samsungTemplate is the built-in mapping for Samsung EMI reconciliation:
// ten column pairs with the transaction reference as the primary key.
var samsungTemplate = model.MappingDocument{
	Mappings: []model.FieldMapping{
		{File1Column: "txn_ref_number", File2Column: "Transaction Reference", IsPrimaryKey: true},
		{File1Column: "TRANSACTIONAMOUNT", File2Column: "Paid Amount"},
		{File1Column: "product_amount", File2Column: "MRP"},
		{File1Column: "PRODUCT_CATEGORY", File2Column: "PRODUCT_CATEGORY"},
		{File1Column: "Tenure", File2Column: "Tenure"},
		{File1Column: "RATE_OF_INTEREST____P_A_", File2Column: "RATE_OF_INTEREST____P_A_"},
		{File1Column: "EMI_AMOUNT", File2Column: "EMI_AMOUNT"},
		{File1Column: "LOAN_AMOUNT", File2Column: "LOAN_AMOUNT"},
		{File1Column: "Brand share", File2Column: "Correct brand share"},
		{File1Column: "Bank share", File2Column: "Correct bank share"},
	},
}

var templates = map[string]model.MappingDocument{
	"samsung": samsungTemplate,
}

// Names returns the available template names, sorted.
func Names() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Template returns a copy of the named built-in mapping document. Lookup is
// case-insensitive. Callers may mutate the returned document freely.
func Template(name string) (model.MappingDocument, error) {
	template, ok := templates[strings.ToLower(name)]
	if !ok {
		return model.MappingDocument{}, errors.PreconditionWrap(
			errors.ErrUnknownTemplate,
			fmt.Sprintf("unknown template: %s, available templates: %s", name, strings.Join(Names(), ", ")),
		)
	}

	doc := model.MappingDocument{Mappings: make([]model.FieldMapping, len(template.Mappings))}
	copy(doc.Mappings, template.Mappings)
	return doc, nil
}

// PrimaryKey returns the column pair flagged as primary key in the named
// template. When multiple entries are flagged the first one wins; when none
// is flagged ok is false.
func PrimaryKey(name string) (model.PrimaryKeyMapping, bool, error) {
	template, err := Template(name)
	if err != nil {
		return model.PrimaryKeyMapping{}, false, err
	}

	for _, m := range template.Mappings {
		if m.IsPrimaryKey {
			return model.PrimaryKeyMapping{
				File1Column: m.File1Column,
				File2Column: m.File2Column,
			}, true, nil
		}
	}
	return model.PrimaryKeyMapping{}, false, nil
}
