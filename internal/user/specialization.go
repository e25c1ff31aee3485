package user

type Specialization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var specializations = []Specialization{
	{ID: "1", Name: "Nội khoa"},
	{ID: "2", Name: "Ngoại khoa"},
	{ID: "3", Name: "Nhi khoa"},
	{ID: "4", Name: "Sản phụ khoa"},
	{ID: "5", Name: "Tim mạch"},
	{ID: "6", Name: "Da liễu"},
	{ID: "7", Name: "Mắt"},
	{ID: "8", Name: "Tai Mũi Họng"},
}

// Specializations returns a copy of the fixed specialization catalogue.
func Specializations() []Specialization {
	out := make([]Specialization, len(specializations))
	copy(out, specializations)
	return out
}
