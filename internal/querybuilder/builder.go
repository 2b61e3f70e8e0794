// Package querybuilder owns the selection and filter state behind the
// structured-query picker and turns it into a query object plus a rendered
// text summary.
package querybuilder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"querychat/internal/models"
)

var ErrNoOptionSelected = errors.New("no option selected")

// Catalog is the reference-data collaborator. Filter values "" and "all"
// mean unfiltered.
type Catalog interface {
	Options(ctx context.Context, nameFilter string) ([]models.Option, error)
	Locations(ctx context.Context, typeFilter string) ([]models.Location, error)
	Items(ctx context.Context, categoryFilter string) ([]models.Item, error)
}

type State int

const (
	StateIdle State = iota
	StateOptionChosen
	StateQueryBuilt
)

// Builder refetches candidate lists from the catalog whenever a filter
// changes and keeps selections independent of the filters: toggling an id in
// and then filtering it out of view never removes it from the selection.
type Builder struct {
	catalog Catalog
	logger  *zap.Logger

	mu sync.Mutex

	state     State
	options   []models.Option
	locations []models.Location
	items     []models.Item

	selectedOption     string
	selectedLocations  []string
	selectedItems      []string
	locationTypeFilter string
	itemCategoryFilter string
}

func New(catalog Catalog, logger *zap.Logger) *Builder {
	return &Builder{
		catalog: catalog,
		logger:  logger,
	}
}

// Load performs the initial unfiltered fetch of all three candidate lists.
func (b *Builder) Load(ctx context.Context) error {
	options, err := b.catalog.Options(ctx, "")
	if err != nil {
		b.logger.Error("failed to load options", zap.Error(err))
		return err
	}
	locations, err := b.catalog.Locations(ctx, "")
	if err != nil {
		b.logger.Error("failed to load locations", zap.Error(err))
		return err
	}
	items, err := b.catalog.Items(ctx, "")
	if err != nil {
		b.logger.Error("failed to load items", zap.Error(err))
		return err
	}

	b.mu.Lock()
	b.options = options
	b.locations = locations
	b.items = items
	b.mu.Unlock()
	return nil
}

// ChooseOption selects the question option. Location and item selections made
// before an option change survive it on purpose.
func (b *Builder) ChooseOption(optionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selectedOption = optionID
	if optionID != "" {
		b.state = StateOptionChosen
	}
}

// SetLocationTypeFilter refetches the candidate location list scoped to the
// filter. The last completed fetch wins; selections are never touched.
func (b *Builder) SetLocationTypeFilter(ctx context.Context, typeFilter string) error {
	locations, err := b.catalog.Locations(ctx, typeFilter)
	if err != nil {
		b.logger.Error("failed to refetch locations",
			zap.Error(err),
			zap.String("type_filter", typeFilter))
		return err
	}

	b.mu.Lock()
	b.locationTypeFilter = typeFilter
	b.locations = locations
	b.mu.Unlock()
	return nil
}

func (b *Builder) SetItemCategoryFilter(ctx context.Context, categoryFilter string) error {
	items, err := b.catalog.Items(ctx, categoryFilter)
	if err != nil {
		b.logger.Error("failed to refetch items",
			zap.Error(err),
			zap.String("category_filter", categoryFilter))
		return err
	}

	b.mu.Lock()
	b.itemCategoryFilter = categoryFilter
	b.items = items
	b.mu.Unlock()
	return nil
}

// ToggleLocation adds the id if absent and removes it if present.
func (b *Builder) ToggleLocation(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selectedLocations = toggle(b.selectedLocations, id)
}

func (b *Builder) ToggleItem(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selectedItems = toggle(b.selectedItems, id)
}

func toggle(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return append(ids, id)
}

// Build resolves the selection into a StructuredQuery and its text summary.
// Names are resolved against the candidate snapshot the builder currently
// holds; a selected id outside the current snapshot keeps its place in the
// query but contributes no name to the summary.
func (b *Builder) Build() (models.StructuredQuery, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.selectedOption == "" {
		return models.StructuredQuery{}, "", ErrNoOptionSelected
	}

	var optionName string
	for _, opt := range b.options {
		if opt.ID == b.selectedOption {
			optionName = opt.Name
			break
		}
	}

	locationNames := make([]string, 0, len(b.selectedLocations))
	for _, loc := range b.locations {
		if contains(b.selectedLocations, loc.ID) {
			locationNames = append(locationNames, loc.Name)
		}
	}
	itemNames := make([]string, 0, len(b.selectedItems))
	for _, item := range b.items {
		if contains(b.selectedItems, item.ID) {
			itemNames = append(itemNames, item.Name)
		}
	}

	summary := fmt.Sprintf("Requête structurée:\nOption: %s, \nLieux: %s, \nArticles: %s, ",
		optionName,
		strings.Join(locationNames, ", "),
		strings.Join(itemNames, ", "))

	query := models.StructuredQuery{
		OptionID:    b.selectedOption,
		LocationIDs: append(make([]string, 0, len(b.selectedLocations)), b.selectedLocations...),
		ItemIDs:     append(make([]string, 0, len(b.selectedItems)), b.selectedItems...),
	}

	b.state = StateQueryBuilt
	return query, summary, nil
}

// Cancel discards the in-progress build cycle: all selection and filter state
// is cleared and the builder returns to idle. The candidate snapshots stay
// loaded.
func (b *Builder) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateIdle
	b.selectedOption = ""
	b.selectedLocations = nil
	b.selectedItems = nil
	b.locationTypeFilter = ""
	b.itemCategoryFilter = ""
}

func (b *Builder) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Builder) SelectedOption() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selectedOption
}

func (b *Builder) SelectedLocations() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.selectedLocations...)
}

func (b *Builder) SelectedItems() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.selectedItems...)
}

func (b *Builder) VisibleOptions() []models.Option {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Option(nil), b.options...)
}

// VisibleLocations is the currently held candidate snapshot; the server
// already applied the type filter.
func (b *Builder) VisibleLocations() []models.Location {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Location(nil), b.locations...)
}

func (b *Builder) VisibleItems() []models.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Item(nil), b.items...)
}

// LocationTypes lists the distinct non-empty types of the held snapshot, in
// first-seen order.
func (b *Builder) LocationTypes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	types := make([]string, 0)
	for _, loc := range b.locations {
		if loc.Type != "" && !contains(types, loc.Type) {
			types = append(types, loc.Type)
		}
	}
	return types
}

func (b *Builder) ItemCategories() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	categories := make([]string, 0)
	for _, item := range b.items {
		if item.Category != "" && !contains(categories, item.Category) {
			categories = append(categories, item.Category)
		}
	}
	return categories
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
