package repository

import (
	"encoding/json"
	"strings"

	"github.com/checkfox/go_request/internal/models"
)

// Operation documents for the Request entity family. The remote API resolves
// operations by name; the documents declare the variables each one takes.

const (
	createRequestDocument = `mutation CreateRequest($input: CreateRequestInput!) {
  createRequest(input: $input) { id status product message leadSource priority estimatedValue budget homeownerContactId agentContactId addressId readinessScore tags missingInformation relationToProperty needFinance requestedVisitDate statusUpdatedAt createdAt updatedAt owner }
}`
	updateRequestDocument = `mutation UpdateRequest($input: UpdateRequestInput!) {
  updateRequest(input: $input) { id status product message leadSource priority estimatedValue budget homeownerContactId agentContactId addressId readinessScore tags missingInformation relationToProperty needFinance requestedVisitDate statusUpdatedAt createdAt updatedAt owner }
}`
	deleteRequestDocument = `mutation DeleteRequest($input: DeleteRequestInput!) {
  deleteRequest(input: $input) { id }
}`
	getRequestDocument = `query GetRequest($id: ID!) {
  getRequest(id: $id) { id status product message leadSource priority estimatedValue budget homeownerContactId agentContactId addressId readinessScore tags missingInformation relationToProperty needFinance requestedVisitDate statusUpdatedAt createdAt updatedAt owner }
}`
	listRequestsDocument = `query ListRequests($filter: RequestFilterInput, $limit: Int, $nextToken: String) {
  listRequests(filter: $filter, limit: $limit, nextToken: $nextToken) { items { id status product message leadSource priority estimatedValue budget homeownerContactId agentContactId addressId readinessScore tags missingInformation relationToProperty needFinance requestedVisitDate statusUpdatedAt createdAt updatedAt owner } nextToken }
}`
	countRequestsDocument = `query CountRequests($filter: RequestFilterInput) {
  countRequests(filter: $filter) { count }
}`
)

// RequestDescriptor supplies operation documents, validation, and data
// transformation for the Request entity
type RequestDescriptor struct{}

func (RequestDescriptor) ModelName() string { return "Request" }

func (RequestDescriptor) CreateOperation() OperationSpec {
	return OperationSpec{Document: createRequestDocument, ResponseKey: "createRequest"}
}

func (RequestDescriptor) UpdateOperation() OperationSpec {
	return OperationSpec{Document: updateRequestDocument, ResponseKey: "updateRequest"}
}

func (RequestDescriptor) DeleteOperation() OperationSpec {
	return OperationSpec{Document: deleteRequestDocument, ResponseKey: "deleteRequest"}
}

func (RequestDescriptor) GetOperation() OperationSpec {
	return OperationSpec{Document: getRequestDocument, ResponseKey: "getRequest"}
}

func (RequestDescriptor) ListOperation() OperationSpec {
	return OperationSpec{Document: listRequestsDocument, ResponseKey: "listRequests"}
}

func (RequestDescriptor) CountOperation() OperationSpec {
	return OperationSpec{Document: countRequestsDocument, ResponseKey: "countRequests"}
}

// ValidateCreate requires the fields without which a request cannot be triaged
func (RequestDescriptor) ValidateCreate(input map[string]any) []models.FieldError {
	var fieldErrors []models.FieldError

	if s, _ := input["homeownerContactId"].(string); strings.TrimSpace(s) == "" {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "homeownerContactId", Message: "required", Value: input["homeownerContactId"],
		})
	}
	if s, _ := input["product"].(string); strings.TrimSpace(s) == "" {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "product", Message: "required", Value: input["product"],
		})
	}
	if raw, ok := input["status"]; ok {
		if s, _ := raw.(string); !models.RequestStatus(s).IsValid() {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field: "status", Message: "unknown status", Value: raw,
			})
		}
	}
	if raw, ok := input["priority"]; ok {
		if s, _ := raw.(string); !models.Priority(s).IsValid() {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field: "priority", Message: "unknown priority", Value: raw,
			})
		}
	}

	return fieldErrors
}

// ValidateUpdate rejects status and priority values outside the enums
func (RequestDescriptor) ValidateUpdate(input map[string]any) []models.FieldError {
	var fieldErrors []models.FieldError

	if raw, ok := input["status"]; ok {
		if s, _ := raw.(string); !models.RequestStatus(s).IsValid() {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field: "status", Message: "unknown status", Value: raw,
			})
		}
	}
	if raw, ok := input["priority"]; ok {
		if s, _ := raw.(string); !models.Priority(s).IsValid() {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field: "priority", Message: "unknown priority", Value: raw,
			})
		}
	}

	return fieldErrors
}

// TransformCreateInput fills the defaults a new request starts with
func (RequestDescriptor) TransformCreateInput(input map[string]any) map[string]any {
	if _, ok := input["status"]; !ok {
		input["status"] = string(models.RequestStatusNew)
	}
	if _, ok := input["priority"]; !ok {
		input["priority"] = string(models.PriorityMedium)
	}
	if s, _ := input["leadSource"].(string); s == "" {
		input["leadSource"] = "unknown"
	}
	return input
}

// TransformResponseData repairs list-valued fields that the remote store
// sometimes hands back as embedded JSON strings. Malformed values decode to
// empty lists instead of failing the whole read.
func (RequestDescriptor) TransformResponseData(raw json.RawMessage) json.RawMessage {
	var record map[string]json.RawMessage
	if err := json.Unmarshal(raw, &record); err != nil {
		return raw
	}

	changed := false
	for _, field := range []string{"tags", "missingInformation"} {
		value, ok := record[field]
		if !ok || isNullPayload(value) {
			continue
		}
		var direct []string
		if err := json.Unmarshal(value, &direct); err == nil {
			continue
		}
		repaired, err := json.Marshal(models.DecodeStringList(value))
		if err != nil {
			continue
		}
		record[field] = repaired
		changed = true
	}

	if !changed {
		return raw
	}
	out, err := json.Marshal(record)
	if err != nil {
		return raw
	}
	return out
}

// Operation documents for the append-only child records of a request.

const (
	createNoteDocument = `mutation CreateRequestNote($input: CreateRequestNoteInput!) {
  createRequestNote(input: $input) { id requestId content author noteType createdAt updatedAt owner }
}`
	updateNoteDocument = `mutation UpdateRequestNote($input: UpdateRequestNoteInput!) {
  updateRequestNote(input: $input) { id requestId content author noteType createdAt updatedAt owner }
}`
	deleteNoteDocument = `mutation DeleteRequestNote($input: DeleteRequestNoteInput!) {
  deleteRequestNote(input: $input) { id }
}`
	getNoteDocument = `query GetRequestNote($id: ID!) {
  getRequestNote(id: $id) { id requestId content author noteType createdAt updatedAt owner }
}`
	listNotesDocument = `query ListRequestNotes($filter: RequestNoteFilterInput, $limit: Int, $nextToken: String) {
  listRequestNotes(filter: $filter, limit: $limit, nextToken: $nextToken) { items { id requestId content author noteType createdAt updatedAt owner } nextToken }
}`
)

// NoteDescriptor supplies operation documents for RequestNote records
type NoteDescriptor struct{}

func (NoteDescriptor) ModelName() string { return "RequestNote" }

func (NoteDescriptor) CreateOperation() OperationSpec {
	return OperationSpec{Document: createNoteDocument, ResponseKey: "createRequestNote"}
}

func (NoteDescriptor) UpdateOperation() OperationSpec {
	return OperationSpec{Document: updateNoteDocument, ResponseKey: "updateRequestNote"}
}

func (NoteDescriptor) DeleteOperation() OperationSpec {
	return OperationSpec{Document: deleteNoteDocument, ResponseKey: "deleteRequestNote"}
}

func (NoteDescriptor) GetOperation() OperationSpec {
	return OperationSpec{Document: getNoteDocument, ResponseKey: "getRequestNote"}
}

func (NoteDescriptor) ListOperation() OperationSpec {
	return OperationSpec{Document: listNotesDocument, ResponseKey: "listRequestNotes"}
}

// ValidateCreate requires the request linkage and a body
func (NoteDescriptor) ValidateCreate(input map[string]any) []models.FieldError {
	var fieldErrors []models.FieldError
	if s, _ := input["requestId"].(string); strings.TrimSpace(s) == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "requestId", Message: "required"})
	}
	if s, _ := input["content"].(string); strings.TrimSpace(s) == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "content", Message: "required"})
	}
	return fieldErrors
}

const (
	createAssignmentDocument = `mutation CreateRequestAssignment($input: CreateRequestAssignmentInput!) {
  createRequestAssignment(input: $input) { id requestId agentId agentName agentRole reason confidence assignedBy createdAt updatedAt owner }
}`
	updateAssignmentDocument = `mutation UpdateRequestAssignment($input: UpdateRequestAssignmentInput!) {
  updateRequestAssignment(input: $input) { id requestId agentId agentName agentRole reason confidence assignedBy createdAt updatedAt owner }
}`
	deleteAssignmentDocument = `mutation DeleteRequestAssignment($input: DeleteRequestAssignmentInput!) {
  deleteRequestAssignment(input: $input) { id }
}`
	getAssignmentDocument = `query GetRequestAssignment($id: ID!) {
  getRequestAssignment(id: $id) { id requestId agentId agentName agentRole reason confidence assignedBy createdAt updatedAt owner }
}`
	listAssignmentsDocument = `query ListRequestAssignments($filter: RequestAssignmentFilterInput, $limit: Int, $nextToken: String) {
  listRequestAssignments(filter: $filter, limit: $limit, nextToken: $nextToken) { items { id requestId agentId agentName agentRole reason confidence assignedBy createdAt updatedAt owner } nextToken }
}`
)

// AssignmentDescriptor supplies operation documents for RequestAssignment records
type AssignmentDescriptor struct{}

func (AssignmentDescriptor) ModelName() string { return "RequestAssignment" }

func (AssignmentDescriptor) CreateOperation() OperationSpec {
	return OperationSpec{Document: createAssignmentDocument, ResponseKey: "createRequestAssignment"}
}

func (AssignmentDescriptor) UpdateOperation() OperationSpec {
	return OperationSpec{Document: updateAssignmentDocument, ResponseKey: "updateRequestAssignment"}
}

func (AssignmentDescriptor) DeleteOperation() OperationSpec {
	return OperationSpec{Document: deleteAssignmentDocument, ResponseKey: "deleteRequestAssignment"}
}

func (AssignmentDescriptor) GetOperation() OperationSpec {
	return OperationSpec{Document: getAssignmentDocument, ResponseKey: "getRequestAssignment"}
}

func (AssignmentDescriptor) ListOperation() OperationSpec {
	return OperationSpec{Document: listAssignmentsDocument, ResponseKey: "listRequestAssignments"}
}

// ValidateCreate requires the request and agent linkage
func (AssignmentDescriptor) ValidateCreate(input map[string]any) []models.FieldError {
	var fieldErrors []models.FieldError
	if s, _ := input["requestId"].(string); strings.TrimSpace(s) == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "requestId", Message: "required"})
	}
	if s, _ := input["agentId"].(string); strings.TrimSpace(s) == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "agentId", Message: "required"})
	}
	return fieldErrors
}

const (
	createStatusHistoryDocument = `mutation CreateRequestStatusHistory($input: CreateRequestStatusHistoryInput!) {
  createRequestStatusHistory(input: $input) { id requestId previousStatus newStatus reason triggeredBy timeInPreviousStatus createdAt updatedAt owner }
}`
	updateStatusHistoryDocument = `mutation UpdateRequestStatusHistory($input: UpdateRequestStatusHistoryInput!) {
  updateRequestStatusHistory(input: $input) { id requestId previousStatus newStatus reason triggeredBy timeInPreviousStatus createdAt updatedAt owner }
}`
	deleteStatusHistoryDocument = `mutation DeleteRequestStatusHistory($input: DeleteRequestStatusHistoryInput!) {
  deleteRequestStatusHistory(input: $input) { id }
}`
	getStatusHistoryDocument = `query GetRequestStatusHistory($id: ID!) {
  getRequestStatusHistory(id: $id) { id requestId previousStatus newStatus reason triggeredBy timeInPreviousStatus createdAt updatedAt owner }
}`
	listStatusHistoryDocument = `query ListRequestStatusHistories($filter: RequestStatusHistoryFilterInput, $limit: Int, $nextToken: String) {
  listRequestStatusHistories(filter: $filter, limit: $limit, nextToken: $nextToken) { items { id requestId previousStatus newStatus reason triggeredBy timeInPreviousStatus createdAt updatedAt owner } nextToken }
}`
)

// StatusHistoryDescriptor supplies operation documents for RequestStatusHistory records
type StatusHistoryDescriptor struct{}

func (StatusHistoryDescriptor) ModelName() string { return "RequestStatusHistory" }

func (StatusHistoryDescriptor) CreateOperation() OperationSpec {
	return OperationSpec{Document: createStatusHistoryDocument, ResponseKey: "createRequestStatusHistory"}
}

func (StatusHistoryDescriptor) UpdateOperation() OperationSpec {
	return OperationSpec{Document: updateStatusHistoryDocument, ResponseKey: "updateRequestStatusHistory"}
}

func (StatusHistoryDescriptor) DeleteOperation() OperationSpec {
	return OperationSpec{Document: deleteStatusHistoryDocument, ResponseKey: "deleteRequestStatusHistory"}
}

func (StatusHistoryDescriptor) GetOperation() OperationSpec {
	return OperationSpec{Document: getStatusHistoryDocument, ResponseKey: "getRequestStatusHistory"}
}

func (StatusHistoryDescriptor) ListOperation() OperationSpec {
	return OperationSpec{Document: listStatusHistoryDocument, ResponseKey: "listRequestStatusHistories"}
}

const (
	createInformationItemDocument = `mutation CreateInformationItem($input: CreateInformationItemInput!) {
  createInformationItem(input: $input) { id requestId label value source resolved createdAt updatedAt owner }
}`
	updateInformationItemDocument = `mutation UpdateInformationItem($input: UpdateInformationItemInput!) {
  updateInformationItem(input: $input) { id requestId label value source resolved createdAt updatedAt owner }
}`
	deleteInformationItemDocument = `mutation DeleteInformationItem($input: DeleteInformationItemInput!) {
  deleteInformationItem(input: $input) { id }
}`
	getInformationItemDocument = `query GetInformationItem($id: ID!) {
  getInformationItem(id: $id) { id requestId label value source resolved createdAt updatedAt owner }
}`
	listInformationItemsDocument = `query ListInformationItems($filter: InformationItemFilterInput, $limit: Int, $nextToken: String) {
  listInformationItems(filter: $filter, limit: $limit, nextToken: $nextToken) { items { id requestId label value source resolved createdAt updatedAt owner } nextToken }
}`
)

// InformationItemDescriptor supplies operation documents for InformationItem records
type InformationItemDescriptor struct{}

func (InformationItemDescriptor) ModelName() string { return "InformationItem" }

func (InformationItemDescriptor) CreateOperation() OperationSpec {
	return OperationSpec{Document: createInformationItemDocument, ResponseKey: "createInformationItem"}
}

func (InformationItemDescriptor) UpdateOperation() OperationSpec {
	return OperationSpec{Document: updateInformationItemDocument, ResponseKey: "updateInformationItem"}
}

func (InformationItemDescriptor) DeleteOperation() OperationSpec {
	return OperationSpec{Document: deleteInformationItemDocument, ResponseKey: "deleteInformationItem"}
}

func (InformationItemDescriptor) GetOperation() OperationSpec {
	return OperationSpec{Document: getInformationItemDocument, ResponseKey: "getInformationItem"}
}

func (InformationItemDescriptor) ListOperation() OperationSpec {
	return OperationSpec{Document: listInformationItemsDocument, ResponseKey: "listInformationItems"}
}

// ValidateCreate requires the request linkage and a label
func (InformationItemDescriptor) ValidateCreate(input map[string]any) []models.FieldError {
	var fieldErrors []models.FieldError
	if s, _ := input["requestId"].(string); strings.TrimSpace(s) == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "requestId", Message: "required"})
	}
	if s, _ := input["label"].(string); strings.TrimSpace(s) == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "label", Message: "required"})
	}
	return fieldErrors
}

const (
	createScopeItemDocument = `mutation CreateScopeItem($input: CreateScopeItemInput!) {
  createScopeItem(input: $input) { id requestId name description quantity unit createdAt updatedAt owner }
}`
	updateScopeItemDocument = `mutation UpdateScopeItem($input: UpdateScopeItemInput!) {
  updateScopeItem(input: $input) { id requestId name description quantity unit createdAt updatedAt owner }
}`
	deleteScopeItemDocument = `mutation DeleteScopeItem($input: DeleteScopeItemInput!) {
  deleteScopeItem(input: $input) { id }
}`
	getScopeItemDocument = `query GetScopeItem($id: ID!) {
  getScopeItem(id: $id) { id requestId name description quantity unit createdAt updatedAt owner }
}`
	listScopeItemsDocument = `query ListScopeItems($filter: ScopeItemFilterInput, $limit: Int, $nextToken: String) {
  listScopeItems(filter: $filter, limit: $limit, nextToken: $nextToken) { items { id requestId name description quantity unit createdAt updatedAt owner } nextToken }
}`
)

// ScopeItemDescriptor supplies operation documents for ScopeItem records
type ScopeItemDescriptor struct{}

func (ScopeItemDescriptor) ModelName() string { return "ScopeItem" }

func (ScopeItemDescriptor) CreateOperation() OperationSpec {
	return OperationSpec{Document: createScopeItemDocument, ResponseKey: "createScopeItem"}
}

func (ScopeItemDescriptor) UpdateOperation() OperationSpec {
	return OperationSpec{Document: updateScopeItemDocument, ResponseKey: "updateScopeItem"}
}

func (ScopeItemDescriptor) DeleteOperation() OperationSpec {
	return OperationSpec{Document: deleteScopeItemDocument, ResponseKey: "deleteScopeItem"}
}

func (ScopeItemDescriptor) GetOperation() OperationSpec {
	return OperationSpec{Document: getScopeItemDocument, ResponseKey: "getScopeItem"}
}

func (ScopeItemDescriptor) ListOperation() OperationSpec {
	return OperationSpec{Document: listScopeItemsDocument, ResponseKey: "listScopeItems"}
}

// ValidateCreate requires the request linkage and a name
func (ScopeItemDescriptor) ValidateCreate(input map[string]any) []models.FieldError {
	var fieldErrors []models.FieldError
	if s, _ := input["requestId"].(string); strings.TrimSpace(s) == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "requestId", Message: "required"})
	}
	if s, _ := input["name"].(string); strings.TrimSpace(s) == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "name", Message: "required"})
	}
	return fieldErrors
}

const (
	createWorkflowStateDocument = `mutation CreateWorkflowState($input: CreateWorkflowStateInput!) {
  createWorkflowState(input: $input) { id requestId workflow state enteredAt createdAt updatedAt owner }
}`
	updateWorkflowStateDocument = `mutation UpdateWorkflowState($input: UpdateWorkflowStateInput!) {
  updateWorkflowState(input: $input) { id requestId workflow state enteredAt createdAt updatedAt owner }
}`
	deleteWorkflowStateDocument = `mutation DeleteWorkflowState($input: DeleteWorkflowStateInput!) {
  deleteWorkflowState(input: $input) { id }
}`
	getWorkflowStateDocument = `query GetWorkflowState($id: ID!) {
  getWorkflowState(id: $id) { id requestId workflow state enteredAt createdAt updatedAt owner }
}`
	listWorkflowStatesDocument = `query ListWorkflowStates($filter: WorkflowStateFilterInput, $limit: Int, $nextToken: String) {
  listWorkflowStates(filter: $filter, limit: $limit, nextToken: $nextToken) { items { id requestId workflow state enteredAt createdAt updatedAt owner } nextToken }
}`
)

// WorkflowStateDescriptor supplies operation documents for WorkflowState records
type WorkflowStateDescriptor struct{}

func (WorkflowStateDescriptor) ModelName() string { return "WorkflowState" }

func (WorkflowStateDescriptor) CreateOperation() OperationSpec {
	return OperationSpec{Document: createWorkflowStateDocument, ResponseKey: "createWorkflowState"}
}

func (WorkflowStateDescriptor) UpdateOperation() OperationSpec {
	return OperationSpec{Document: updateWorkflowStateDocument, ResponseKey: "updateWorkflowState"}
}

func (WorkflowStateDescriptor) DeleteOperation() OperationSpec {
	return OperationSpec{Document: deleteWorkflowStateDocument, ResponseKey: "deleteWorkflowState"}
}

func (WorkflowStateDescriptor) GetOperation() OperationSpec {
	return OperationSpec{Document: getWorkflowStateDocument, ResponseKey: "getWorkflowState"}
}

func (WorkflowStateDescriptor) ListOperation() OperationSpec {
	return OperationSpec{Document: listWorkflowStatesDocument, ResponseKey: "listWorkflowStates"}
}

// ValidateCreate requires the request linkage and the workflow name
func (WorkflowStateDescriptor) ValidateCreate(input map[string]any) []models.FieldError {
	var fieldErrors []models.FieldError
	if s, _ := input["requestId"].(string); strings.TrimSpace(s) == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "requestId", Message: "required"})
	}
	if s, _ := input["workflow"].(string); strings.TrimSpace(s) == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "workflow", Message: "required"})
	}
	return fieldErrors
}
