package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/checkfox/go_request/internal/models"
	"github.com/checkfox/go_request/internal/transport"
)

// Executor is the transport surface the repository depends on
type Executor interface {
	Query(ctx context.Context, op transport.Operation, opCtx transport.OperationContext) models.Result[*transport.Response]
	Mutate(ctx context.Context, op transport.Operation, opCtx transport.OperationContext) models.Result[*transport.Response]
}

// OperationSpec names one remote operation: the document to send and the
// key under which the response data arrives
type OperationSpec struct {
	Document    string
	ResponseKey string
}

// Descriptor supplies the entity-specific operation documents for a
// repository. Optional capabilities (count, validation, transformation) are
// separate interfaces checked by assertion, with no-op behavior when absent.
type Descriptor[T any] interface {
	ModelName() string
	CreateOperation() OperationSpec
	UpdateOperation() OperationSpec
	DeleteOperation() OperationSpec
	GetOperation() OperationSpec
	ListOperation() OperationSpec
}

// CountDescriptor marks a descriptor with a dedicated count operation
type CountDescriptor interface {
	CountOperation() OperationSpec
}

// CreateValidator validates create input before any network call
type CreateValidator interface {
	ValidateCreate(input map[string]any) []models.FieldError
}

// UpdateValidator validates update input before any network call
type UpdateValidator interface {
	ValidateUpdate(input map[string]any) []models.FieldError
}

// CreateTransformer rewrites create input before it is sent
type CreateTransformer interface {
	TransformCreateInput(input map[string]any) map[string]any
}

// UpdateTransformer rewrites update input before it is sent
type UpdateTransformer interface {
	TransformUpdateInput(input map[string]any) map[string]any
}

// ResponseTransformer rewrites raw response data before decoding
type ResponseTransformer interface {
	TransformResponseData(raw json.RawMessage) json.RawMessage
}

// Options holds repository tuning shared by all entity repositories
type Options struct {
	DefaultLimit      int
	MaxLimit          int
	ValidationEnabled bool
	AuditFields       bool
	AuthMode          transport.AuthMode
}

// DefaultOptions are the repository defaults used when a field is zero
var DefaultOptions = Options{
	DefaultLimit:      50,
	MaxLimit:          200,
	ValidationEnabled: true,
	AuditFields:       true,
	AuthMode:          transport.AuthModeAPIKey,
}

// Pagination bounds a list operation
type Pagination struct {
	Limit     int
	NextToken string
}

// ListOptions configures a list operation
type ListOptions struct {
	Filter     *Filter
	Pagination Pagination
}

// Page is one page of list results
type Page[T any] struct {
	Items     []T
	NextToken string
	HasMore   bool
}

// Repository provides generic CRUD over one entity type, delegating
// transport to the Executor and entity specifics to the Descriptor
type Repository[T any] struct {
	exec Executor
	desc Descriptor[T]
	opts Options
}

// New creates a repository for the given descriptor
func New[T any](exec Executor, desc Descriptor[T], opts Options) *Repository[T] {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultOptions.DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = DefaultOptions.MaxLimit
	}
	if opts.AuthMode == "" {
		opts.AuthMode = DefaultOptions.AuthMode
	}
	return &Repository[T]{exec: exec, desc: desc, opts: opts}
}

// Create validates and transforms the input, then executes the create
// operation. Validation failures short-circuit before any network call.
func (r *Repository[T]) Create(ctx context.Context, input map[string]any) models.Result[T] {
	if r.opts.ValidationEnabled {
		if v, ok := r.desc.(CreateValidator); ok {
			if fieldErrors := v.ValidateCreate(input); len(fieldErrors) > 0 {
				return models.Fail[T](models.NewValidationError(
					fmt.Sprintf("create %s input failed validation", r.desc.ModelName()), fieldErrors))
			}
		}
	}

	if t, ok := r.desc.(CreateTransformer); ok {
		input = t.TransformCreateInput(input)
	}

	if r.opts.AuditFields {
		input = stampAuditFields(input, true)
	}

	spec := r.desc.CreateOperation()
	res := r.exec.Mutate(ctx, transport.Operation{
		Document:  spec.Document,
		Variables: map[string]any{"input": input},
		AuthMode:  r.opts.AuthMode,
	}, r.opCtx("create"))
	if !res.Success {
		return models.FailWithMeta[T](res.Err, res.Meta)
	}

	entity, repoErr := r.decodeEntity(res.Data.Data[spec.ResponseKey])
	if repoErr != nil {
		return models.Fail[T](repoErr.WithContext(r.opName("create"), r.desc.ModelName()))
	}
	return models.OKWithMeta(entity, res.Meta)
}

// Get retrieves one record by id. A successful remote call that returns no
// record is a not-found error, not a generic failure; Exists depends on this.
func (r *Repository[T]) Get(ctx context.Context, id string) models.Result[T] {
	if id == "" {
		return models.Fail[T](models.NewValidationError("id must not be empty",
			[]models.FieldError{{Field: "id", Message: "required"}}))
	}

	spec := r.desc.GetOperation()
	res := r.exec.Query(ctx, transport.Operation{
		Document:  spec.Document,
		Variables: map[string]any{"id": id},
		AuthMode:  r.opts.AuthMode,
	}, r.opCtx("get"))
	if !res.Success {
		return models.FailWithMeta[T](res.Err, res.Meta)
	}

	raw := res.Data.Data[spec.ResponseKey]
	if isNullPayload(raw) {
		return models.Fail[T](models.NewNotFoundError(r.desc.ModelName(), id))
	}

	entity, repoErr := r.decodeEntity(raw)
	if repoErr != nil {
		return models.Fail[T](repoErr.WithContext(r.opName("get"), r.desc.ModelName()))
	}
	return models.OKWithMeta(entity, res.Meta)
}

// Update validates the id and payload, merges the id into the write, and
// executes the update operation
func (r *Repository[T]) Update(ctx context.Context, input map[string]any) models.Result[T] {
	id, _ := input["id"].(string)
	if id == "" {
		return models.Fail[T](models.NewValidationError("update requires a non-empty id",
			[]models.FieldError{{Field: "id", Message: "required"}}))
	}
	if len(input) <= 1 {
		return models.Fail[T](models.NewValidationError("update requires at least one field besides id", nil))
	}

	if r.opts.ValidationEnabled {
		if v, ok := r.desc.(UpdateValidator); ok {
			if fieldErrors := v.ValidateUpdate(input); len(fieldErrors) > 0 {
				return models.Fail[T](models.NewValidationError(
					fmt.Sprintf("update %s input failed validation", r.desc.ModelName()), fieldErrors))
			}
		}
	}

	if t, ok := r.desc.(UpdateTransformer); ok {
		input = t.TransformUpdateInput(input)
	}
	// The id survives any transformation
	input["id"] = id

	if r.opts.AuditFields {
		input = stampAuditFields(input, false)
	}

	spec := r.desc.UpdateOperation()
	res := r.exec.Mutate(ctx, transport.Operation{
		Document:  spec.Document,
		Variables: map[string]any{"input": input},
		AuthMode:  r.opts.AuthMode,
	}, r.opCtx("update"))
	if !res.Success {
		return models.FailWithMeta[T](res.Err, res.Meta)
	}

	entity, repoErr := r.decodeEntity(res.Data.Data[spec.ResponseKey])
	if repoErr != nil {
		return models.Fail[T](repoErr.WithContext(r.opName("update"), r.desc.ModelName()))
	}
	return models.OKWithMeta(entity, res.Meta)
}

// Delete removes one record by id and returns whether the delete succeeded
func (r *Repository[T]) Delete(ctx context.Context, id string) models.Result[bool] {
	if id == "" {
		return models.Fail[bool](models.NewValidationError("id must not be empty",
			[]models.FieldError{{Field: "id", Message: "required"}}))
	}

	spec := r.desc.DeleteOperation()
	res := r.exec.Mutate(ctx, transport.Operation{
		Document:  spec.Document,
		Variables: map[string]any{"input": map[string]any{"id": id}},
		AuthMode:  r.opts.AuthMode,
	}, r.opCtx("delete"))
	if !res.Success {
		return models.FailWithMeta[bool](res.Err, res.Meta)
	}

	return models.OKWithMeta(true, res.Meta)
}

// List returns one page of records. The effective page size is
// min(requested, default, max); caller input can never exceed the max.
func (r *Repository[T]) List(ctx context.Context, opts ListOptions) models.Result[Page[T]] {
	limit := r.effectiveLimit(opts.Pagination.Limit)

	variables := map[string]any{"limit": limit}
	if opts.Filter != nil && !opts.Filter.IsZero() {
		variables["filter"] = opts.Filter.Map()
	}
	if opts.Pagination.NextToken != "" {
		variables["nextToken"] = opts.Pagination.NextToken
	}

	spec := r.desc.ListOperation()
	res := r.exec.Query(ctx, transport.Operation{
		Document:  spec.Document,
		Variables: variables,
		AuthMode:  r.opts.AuthMode,
	}, r.opCtx("list"))
	if !res.Success {
		return models.FailWithMeta[Page[T]](res.Err, res.Meta)
	}

	var wire struct {
		Items     []json.RawMessage `json:"items"`
		NextToken *string           `json:"nextToken"`
	}
	raw := res.Data.Data[spec.ResponseKey]
	if !isNullPayload(raw) {
		if err := json.Unmarshal(raw, &wire); err != nil {
			return models.Fail[Page[T]](models.NewUnknownError(
				fmt.Sprintf("failed to decode %s list payload", r.desc.ModelName()), err))
		}
	}

	page := Page[T]{Items: make([]T, 0, len(wire.Items))}
	for _, rawItem := range wire.Items {
		entity, repoErr := r.decodeEntity(rawItem)
		if repoErr != nil {
			return models.Fail[Page[T]](repoErr.WithContext(r.opName("list"), r.desc.ModelName()))
		}
		page.Items = append(page.Items, entity)
	}
	// The remote may hand back more than asked for; never exceed the cap
	if len(page.Items) > limit {
		page.Items = page.Items[:limit]
	}
	if wire.NextToken != nil && *wire.NextToken != "" {
		page.NextToken = *wire.NextToken
		page.HasMore = true
	}

	meta := res.Meta
	if meta == nil {
		meta = &models.ResultMeta{}
	}
	if page.NextToken != "" {
		meta.NextToken = &page.NextToken
	}
	return models.OKWithMeta(page, meta)
}

// Find is sugar over List returning only the item slice
func (r *Repository[T]) Find(ctx context.Context, filter Filter, pagination Pagination) models.Result[[]T] {
	res := r.List(ctx, ListOptions{Filter: &filter, Pagination: pagination})
	if !res.Success {
		return models.FailWithMeta[[]T](res.Err, res.Meta)
	}
	return models.OKWithMeta(res.Data.Items, res.Meta)
}

// Count returns the number of matching records. Without a dedicated count
// operation it lists up to the configured max and counts the page, which is
// an approximation once the true count exceeds the cap; results from the
// fallback are flagged with Meta.Approximate.
func (r *Repository[T]) Count(ctx context.Context, filter *Filter) models.Result[int] {
	if cd, ok := r.desc.(CountDescriptor); ok {
		spec := cd.CountOperation()
		variables := map[string]any{}
		if filter != nil && !filter.IsZero() {
			variables["filter"] = filter.Map()
		}
		res := r.exec.Query(ctx, transport.Operation{
			Document:  spec.Document,
			Variables: variables,
			AuthMode:  r.opts.AuthMode,
		}, r.opCtx("count"))
		if !res.Success {
			return models.FailWithMeta[int](res.Err, res.Meta)
		}

		count, repoErr := decodeCount(res.Data.Data[spec.ResponseKey])
		if repoErr != nil {
			return models.Fail[int](repoErr.WithContext(r.opName("count"), r.desc.ModelName()))
		}
		return models.OKWithMeta(count, res.Meta)
	}

	res := r.List(ctx, ListOptions{
		Filter:     filter,
		Pagination: Pagination{Limit: r.opts.MaxLimit},
	})
	if !res.Success {
		return models.FailWithMeta[int](res.Err, res.Meta)
	}

	count := len(res.Data.Items)
	meta := res.Meta
	if meta == nil {
		meta = &models.ResultMeta{}
	}
	meta.Approximate = true
	meta.TotalCount = &count
	return models.OKWithMeta(count, meta)
}

// Exists reports whether a record with the given id exists. Not-found maps
// to false; any other failure propagates rather than being coerced to false.
func (r *Repository[T]) Exists(ctx context.Context, id string) models.Result[bool] {
	res := r.Get(ctx, id)
	if res.Success {
		return models.OK(true)
	}
	if res.Err != nil && res.Err.Code == models.ErrorCodeNotFound {
		return models.OK(false)
	}
	return models.FailWithMeta[bool](res.Err, res.Meta)
}

// BatchCreate creates the inputs sequentially, collecting per-item errors.
// It succeeds only when every item succeeded.
func (r *Repository[T]) BatchCreate(ctx context.Context, inputs []map[string]any) models.Result[[]T] {
	created := make([]T, 0, len(inputs))
	var failures []*models.RepositoryError

	for i, input := range inputs {
		res := r.Create(ctx, input)
		if !res.Success {
			failures = append(failures, res.Err.WithContext(fmt.Sprintf("batchCreate[%d]", i), r.desc.ModelName()))
			continue
		}
		created = append(created, res.Data)
	}

	if len(failures) > 0 {
		return models.Fail[[]T](batchError("batchCreate", r.desc.ModelName(), len(failures), len(inputs), failures))
	}
	return models.OK(created)
}

// BatchUpdate updates the inputs sequentially, collecting per-item errors
func (r *Repository[T]) BatchUpdate(ctx context.Context, inputs []map[string]any) models.Result[[]T] {
	updated := make([]T, 0, len(inputs))
	var failures []*models.RepositoryError

	for i, input := range inputs {
		res := r.Update(ctx, input)
		if !res.Success {
			failures = append(failures, res.Err.WithContext(fmt.Sprintf("batchUpdate[%d]", i), r.desc.ModelName()))
			continue
		}
		updated = append(updated, res.Data)
	}

	if len(failures) > 0 {
		return models.Fail[[]T](batchError("batchUpdate", r.desc.ModelName(), len(failures), len(inputs), failures))
	}
	return models.OK(updated)
}

// BatchDelete deletes the ids sequentially, collecting per-item errors
func (r *Repository[T]) BatchDelete(ctx context.Context, ids []string) models.Result[bool] {
	var failures []*models.RepositoryError

	for i, id := range ids {
		res := r.Delete(ctx, id)
		if !res.Success {
			failures = append(failures, res.Err.WithContext(fmt.Sprintf("batchDelete[%d]", i), r.desc.ModelName()))
		}
	}

	if len(failures) > 0 {
		return models.Fail[bool](batchError("batchDelete", r.desc.ModelName(), len(failures), len(ids), failures))
	}
	return models.OK(true)
}

func (r *Repository[T]) effectiveLimit(requested int) int {
	limit := r.opts.DefaultLimit
	if requested > 0 && requested < limit {
		limit = requested
	}
	if limit > r.opts.MaxLimit {
		limit = r.opts.MaxLimit
	}
	return limit
}

func (r *Repository[T]) opName(action string) string {
	return action + r.desc.ModelName()
}

func (r *Repository[T]) opCtx(action string) transport.OperationContext {
	return transport.OperationContext{
		OperationName: r.opName(action),
		ModelName:     r.desc.ModelName(),
	}
}

func (r *Repository[T]) decodeEntity(raw json.RawMessage) (T, *models.RepositoryError) {
	var entity T
	if isNullPayload(raw) {
		return entity, models.NewUnknownError(
			fmt.Sprintf("%s operation returned no data", r.desc.ModelName()), nil)
	}

	if t, ok := r.desc.(ResponseTransformer); ok {
		raw = t.TransformResponseData(raw)
	}

	if err := json.Unmarshal(raw, &entity); err != nil {
		return entity, models.NewUnknownError(
			fmt.Sprintf("failed to decode %s payload", r.desc.ModelName()), err)
	}
	return entity, nil
}

func decodeCount(raw json.RawMessage) (int, *models.RepositoryError) {
	if isNullPayload(raw) {
		return 0, models.NewUnknownError("count operation returned no data", nil)
	}

	var direct int
	if err := json.Unmarshal(raw, &direct); err == nil {
		return direct, nil
	}

	var wrapped struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		return wrapped.Count, nil
	}

	return 0, models.NewUnknownError("count payload has an unexpected shape", nil)
}

func batchError(operation, model string, failed, total int, failures []*models.RepositoryError) *models.RepositoryError {
	errMessages := make([]string, 0, len(failures))
	for _, f := range failures {
		errMessages = append(errMessages, f.Error())
	}
	return &models.RepositoryError{
		Code:        models.ErrorCodeUnknown,
		Message:     fmt.Sprintf("%s failed for %d of %d items", operation, failed, total),
		UserMessage: "Some items could not be processed. Please try again.",
		Operation:   operation,
		Model:       model,
		Details: map[string]any{
			"failed": failed,
			"total":  total,
			"errors": errMessages,
		},
		Timestamp: time.Now(),
	}
}

func stampAuditFields(input map[string]any, create bool) map[string]any {
	now := time.Now().UTC().Format(time.RFC3339)
	if create {
		if _, ok := input["createdAt"]; !ok {
			input["createdAt"] = now
		}
	}
	input["updatedAt"] = now
	return input
}

func isNullPayload(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
