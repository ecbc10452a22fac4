package tags

type TagRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Color string `json:"color" validate:"required,hexcolor,max=7"`
	Slug  string `json:"slug" validate:"required,max=200,slug"`
}
