package entity

type Gender string

const (
	GenderMale           Gender = "MALE"
	GenderFemale         Gender = "FEMALE"
	GenderPreferNotToSay Gender = "PREFER_NOT_TO_SAY"
)

var genderLabels = map[Gender]string{
	GenderMale:           "Male",
	GenderFemale:         "Female",
	GenderPreferNotToSay: "Prefer not to say",
}

// Genders lists every value in display order.
func Genders() []Gender {
	return []Gender{GenderMale, GenderFemale, GenderPreferNotToSay}
}

func (g Gender) DisplayName() string {
	if label, ok := genderLabels[g]; ok {
		return label
	}
	return ""
}

func (g Gender) Valid() bool {
	_, ok := genderLabels[g]
	return ok
}
