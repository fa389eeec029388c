package substitute

import "strings"

// Transforms is the static table deriving dependent field values from the
// raw Department input. An unknown department falls back to the raw
// value for every derived field; unknown input never hard-fails.
type Transforms struct {
	ShortForms map[string]string `yaml:"shortForms"`
	HODNames   map[string]string `yaml:"hodNames"`
}

// DefaultTransforms returns the stock department table.
func DefaultTransforms() Transforms {
	return Transforms{
		ShortForms: map[string]string{
			"COMPUTER SCIENCE AND ENGINEERING":             "Dept. of CSE",
			"ELECTRONICS AND COMMUNICATION ENGINEERING":    "Dept. of ECE",
			"INFORMATION SCIENCE AND ENGINEERING":          "Dept. of ISE",
			"MECHANICAL ENGINEERING":                       "Dept. of ME",
			"CIVIL ENGINEERING":                            "Dept. of CE",
			"ELECTRONICS AND INSTRUMENTATION ENGINEERING":  "Dept. of EIE",
			"ARTIFICIAL INTELLIGENCE AND MACHINE LEARNING": "Dept. of AIML",
			"ELECTRICAL AND ELECTRONICS ENGINEERING":       "Dept. of EEE",
		},
		HODNames: map[string]string{
			"COMPUTER SCIENCE AND ENGINEERING":             "Dr. Chayadevi M.L",
			"ELECTRONICS AND COMMUNICATION ENGINEERING":    "Dr. P. A. Vijaya",
			"INFORMATION SCIENCE AND ENGINEERING":          "Dr. S. Srividhya",
			"MECHANICAL ENGINEERING":                       "Dr. B.S. Anil Kumar",
			"CIVIL ENGINEERING":                            "Dr. S.B. Anadinni",
			"ELECTRONICS AND INSTRUMENTATION ENGINEERING":  "Dr. K.S. Jyothi",
			"ARTIFICIAL INTELLIGENCE AND MACHINE LEARNING": "Dr. Saritha Chakrasali",
			"ELECTRICAL AND ELECTRONICS ENGINEERING":       "Dr. R.V. Parimala",
		},
	}
}

// ShortForm derives the department's short form, falling back to the raw
// value when the department is not in the table.
func (t Transforms) ShortForm(department string) string {
	if v, ok := t.ShortForms[department]; ok {
		return v
	}
	return department
}

// HOD derives the head-of-department's formal name, falling back to the
// raw value when the department is not in the table.
func (t Transforms) HOD(department string) string {
	if v, ok := t.HODNames[department]; ok {
		return v
	}
	return department
}

// Expand maps the flat input onto the effective key set: derived
// department keys, the acknowledgement aliases, and the inline
// comma-joined variant of a multi-line name list. Keys the input carries
// directly pass through; an explicitly present key always wins over a
// derived value for the same key.
func (t Transforms) Expand(input map[string]string) map[string]string {
	out := make(map[string]string, len(input)+12)

	if dept := strings.TrimSpace(input["Department"]); dept != "" {
		hod := t.HOD(dept)
		short := t.ShortForm(dept)

		out["Department"] = dept
		out["Department_4"] = dept
		out["Department_5"] = hod
		out["Department_6"] = short
		out["Department_7"] = short
		out["Department_8"] = dept
		out["Department_9"] = dept
		out["Department_10"] = dept
		out["HODName_Ack"] = hod

		out["ProjectTitle_Ack"] = input["ProjectTitle"]
		out["GuideName_Ack"] = input["GuideName"]
		out["Designation_Ack"] = input["Designation"]
	}

	for key, value := range input {
		if key == "Department" {
			continue
		}
		if key == "NameAndUSN" {
			// The certificate renders the list inline; the title page
			// stacks it. An explicit NameAndUSN_2 input wins.
			if _, explicit := input["NameAndUSN_2"]; !explicit {
				out["NameAndUSN_2"] = strings.ReplaceAll(value, "\n", ", ")
			}
		}
		out[key] = value
	}
	return out
}
