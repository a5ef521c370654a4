package models

// CategoryKey identifies an event category in the calendar views.
type CategoryKey string

const (
	CategoryExhibition CategoryKey = "exhibition"
	CategoryPopup      CategoryKey = "popup"
)

// CategoryKeys lists every category in declaration order. Serialization and
// iteration always follow this order.
var CategoryKeys = []CategoryKey{CategoryExhibition, CategoryPopup}

// CategoryMeta is the immutable display metadata of a category.
type CategoryMeta struct {
	Label       string `json:"label"`
	AccentColor string `json:"accent_color"`
	TextColor   string `json:"text_color"`
}

var categoryMeta = map[CategoryKey]CategoryMeta{
	CategoryExhibition: {Label: "전시", AccentColor: "#E8F1FF", TextColor: "#2F6FE4"},
	CategoryPopup:      {Label: "팝업", AccentColor: "#FFF0E5", TextColor: "#F2701C"},
}

// Valid reports whether k is a known category.
func (k CategoryKey) Valid() bool {
	_, ok := categoryMeta[k]
	return ok
}

// Meta returns the display metadata for k.
func (k CategoryKey) Meta() CategoryMeta {
	return categoryMeta[k]
}

// CategoryTag is a category key paired with its display metadata.
type CategoryTag struct {
	Key CategoryKey `json:"key"`
	CategoryMeta
}

// TagFor builds the tag for k from the static table.
func TagFor(k CategoryKey) CategoryTag {
	return CategoryTag{Key: k, CategoryMeta: k.Meta()}
}

// CategorySet maps every known category to its active flag. A set built by
// the constructors below always has an entry for each CategoryKeys member.
type CategorySet map[CategoryKey]bool

// AllCategories returns a set with every category active.
func AllCategories() CategorySet {
	return fillCategories(true)
}

// NoCategories returns a set with every category inactive.
func NoCategories() CategorySet {
	return fillCategories(false)
}

func fillCategories(value bool) CategorySet {
	set := make(CategorySet, len(CategoryKeys))
	for _, k := range CategoryKeys {
		set[k] = value
	}
	return set
}

// CategorySetOf activates exactly the given keys; unknown keys are dropped.
func CategorySetOf(keys ...CategoryKey) CategorySet {
	set := NoCategories()
	for _, k := range keys {
		if k.Valid() {
			set[k] = true
		}
	}
	return set
}

// Clone copies the set, filling any missing key with false.
func (s CategorySet) Clone() CategorySet {
	out := NoCategories()
	for _, k := range CategoryKeys {
		out[k] = s[k]
	}
	return out
}

// Active lists active keys in declaration order.
func (s CategorySet) Active() []CategoryKey {
	out := make([]CategoryKey, 0, len(CategoryKeys))
	for _, k := range CategoryKeys {
		if s[k] {
			out = append(out, k)
		}
	}
	return out
}

// AllActive reports whether every category is active.
func (s CategorySet) AllActive() bool {
	return len(s.Active()) == len(CategoryKeys)
}

// Equal compares two sets key by key.
func (s CategorySet) Equal(other CategorySet) bool {
	for _, k := range CategoryKeys {
		if s[k] != other[k] {
			return false
		}
	}
	return true
}

// PopupSubcategory is the closed popup subcategory enum.
type PopupSubcategory string

const (
	PopupSubcategoryAll       PopupSubcategory = "all"
	PopupSubcategoryFashion   PopupSubcategory = "fashion"
	PopupSubcategoryBeauty    PopupSubcategory = "beauty"
	PopupSubcategoryFood      PopupSubcategory = "food"
	PopupSubcategoryCharacter PopupSubcategory = "character"
	PopupSubcategoryLifestyle PopupSubcategory = "lifestyle"
	PopupSubcategoryTech      PopupSubcategory = "tech"
)

// PopupSubcategories lists popup subcategories in declaration order, "all" first.
var PopupSubcategories = []PopupSubcategory{
	PopupSubcategoryAll,
	PopupSubcategoryFashion,
	PopupSubcategoryBeauty,
	PopupSubcategoryFood,
	PopupSubcategoryCharacter,
	PopupSubcategoryLifestyle,
	PopupSubcategoryTech,
}

// Valid reports whether s belongs to the enum.
func (s PopupSubcategory) Valid() bool {
	for _, v := range PopupSubcategories {
		if v == s {
			return true
		}
	}
	return false
}

// ExhibitionSubcategory is the closed exhibition subcategory enum.
type ExhibitionSubcategory string

const (
	ExhibitionSubcategoryAll     ExhibitionSubcategory = "all"
	ExhibitionSubcategoryArt     ExhibitionSubcategory = "art"
	ExhibitionSubcategoryPhoto   ExhibitionSubcategory = "photo"
	ExhibitionSubcategoryDesign  ExhibitionSubcategory = "design"
	ExhibitionSubcategoryMedia   ExhibitionSubcategory = "media"
	ExhibitionSubcategoryHistory ExhibitionSubcategory = "history"
	ExhibitionSubcategoryScience ExhibitionSubcategory = "science"
)

// ExhibitionSubcategories lists exhibition subcategories in declaration order, "all" first.
var ExhibitionSubcategories = []ExhibitionSubcategory{
	ExhibitionSubcategoryAll,
	ExhibitionSubcategoryArt,
	ExhibitionSubcategoryPhoto,
	ExhibitionSubcategoryDesign,
	ExhibitionSubcategoryMedia,
	ExhibitionSubcategoryHistory,
	ExhibitionSubcategoryScience,
}

// Valid reports whether s belongs to the enum.
func (s ExhibitionSubcategory) Valid() bool {
	for _, v := range ExhibitionSubcategories {
		if v == s {
			return true
		}
	}
	return false
}

// SimpleFilterKey is the smaller category enum of the simple calendar view.
type SimpleFilterKey string

const (
	SimpleFilterEvent    SimpleFilterKey = "event"
	SimpleFilterWishlist SimpleFilterKey = "wishlist"
)

// SimpleFilterKeys lists the simple filter keys in declaration order.
var SimpleFilterKeys = []SimpleFilterKey{SimpleFilterEvent, SimpleFilterWishlist}

// Valid reports whether k belongs to the enum.
func (k SimpleFilterKey) Valid() bool {
	return k == SimpleFilterEvent || k == SimpleFilterWishlist
}

// RegionAll is the sentinel meaning "no region restriction".
const RegionAll = "all"

// Region is a selectable region declared by the event source.
type Region struct {
	ID   string `db:"region_id" json:"id"`
	Name string `db:"region_name" json:"name"`
}

// AllRegion is the guaranteed fallback region.
func AllRegion() Region {
	return Region{ID: RegionAll, Name: "전체"}
}
