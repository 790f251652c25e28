package models

// MenuItem is one dish. ID is empty for items created before item
// identities existed; callers must not assume it is set.
type MenuItem struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

func (i MenuItem) HasID() bool {
	return i.ID != ""
}

type MenuCategory struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Order  int        `json:"order"`
	Hidden bool       `json:"hidden,omitempty"`
	Items  []MenuItem `json:"items"`
}

// Clone returns a copy that shares no backing array with c.
func (c MenuCategory) Clone() MenuCategory {
	out := c
	out.Items = make([]MenuItem, len(c.Items))
	copy(out.Items, c.Items)
	return out
}

func CloneMenu(menu []MenuCategory) []MenuCategory {
	out := make([]MenuCategory, len(menu))
	for i := range menu {
		out[i] = menu[i].Clone()
	}
	return out
}

type MenuItemInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=2000"`
	Price       string `json:"price" validate:"required,max=50"`
}

// MenuItemPatch updates an identified item. A nil field is left as is; an
// empty string clears it. The name can be changed but never cleared.
type MenuItemPatch struct {
	Name        *string `json:"name,omitempty" validate:"omitnil,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitnil,max=2000"`
	Price       *string `json:"price,omitempty" validate:"omitnil,max=50"`
}

func (p MenuItemPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil
}

// FullPatch sets every editable field of the stored item to item's values.
func FullPatch(item MenuItem) MenuItemPatch {
	name, description, price := item.Name, item.Description, item.Price
	return MenuItemPatch{Name: &name, Description: &description, Price: &price}
}

// MenuCategoryUpdate replaces a category's name and its full item list.
type MenuCategoryUpdate struct {
	Name   string     `json:"name" validate:"required,max=200"`
	Hidden *bool      `json:"hidden,omitempty"`
	Items  []MenuItem `json:"items" validate:"dive"`
}

type MutationResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Item    *MenuItem `json:"item,omitempty"`
}
