package domain

// Payload is implemented only by the request bodies declared in this file, so
// every downstream call site sends one of a known set of shapes.
type Payload interface {
	payload()
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type StudentRecord struct {
	Lastname  string `json:"lastname" binding:"required"`
	Firstname string `json:"firstname" binding:"required"`
	Email     string `json:"email" binding:"required"`
}

// StudentRecords is the bulk-create body of the auth service.
type StudentRecords []StudentRecord

type UpdateUserRequest struct {
	Firstname *string `json:"firstname,omitempty"`
	Lastname  *string `json:"lastname,omitempty"`
	Email     *string `json:"email,omitempty"`
}

type UpdatePasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required"`
}

type GroupSetting struct {
	PromotionID int64  `json:"promotionId"`
	MinMembers  int    `json:"minMembers"`
	MaxMembers  int    `json:"maxMembers"`
	Mode        string `json:"mode"`
	Deadline    string `json:"deadline"`
}

type CreateProjectRequest struct {
	Name          string         `json:"name" binding:"required"`
	Description   string         `json:"description" binding:"required"`
	CreatorID     int64          `json:"creatorId" binding:"required"`
	PromotionIDs  []int64        `json:"promotionIds"`
	GroupSettings []GroupSetting `json:"groupSettings,omitempty"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type UpdateProjectStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=VISIBLE DRAFT HIDDEN"`
}

type CreateGroupsRequest struct {
	NumberOfGroups int     `json:"numberOfGroups" binding:"required"`
	BaseName       *string `json:"baseName,omitempty"`
}

type UpdateGroupRequest struct {
	Name *string `json:"name,omitempty"`
}

type StudentIDsRequest struct {
	StudentIDs []int64 `json:"studentIds" binding:"required"`
}

type GroupSettingsRequest struct {
	MinMembers int    `json:"minMembers" binding:"required"`
	MaxMembers int    `json:"maxMembers" binding:"required"`
	Mode       string `json:"mode" binding:"required"`
	Deadline   string `json:"deadline" binding:"required"`
}

type CreatePromotionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	StudentsCSV string `json:"students_csv" binding:"required"`
	CreatorID   int64  `json:"creatorId" binding:"required"`
}

// PromotionRecord is what the project service stores for a new promotion.
type PromotionRecord struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	CreatorID   int64   `json:"creatorId"`
	StudentIDs  []int64 `json:"studentIds"`
}

type UpdatePromotionRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	StudentsCSV *string `json:"students_csv,omitempty"`
}

type CreateDeliverableRequest struct {
	ProjectID             int64   `json:"projectId" binding:"required"`
	PromotionID           int64   `json:"promotionId" binding:"required"`
	Name                  string  `json:"name" binding:"required"`
	Deadline              string  `json:"deadline" binding:"required"`
	AllowLateSubmission   bool    `json:"allowLateSubmission"`
	LateSubmissionPenalty float64 `json:"lateSubmissionPenalty"`
}

type UpdateDeliverableRequest struct {
	ID                    int64    `json:"id" binding:"required"`
	ProjectID             int64    `json:"projectId" binding:"required"`
	PromotionID           int64    `json:"promotionId" binding:"required"`
	Name                  *string  `json:"name,omitempty"`
	Deadline              *string  `json:"deadline,omitempty"`
	AllowLateSubmission   *bool    `json:"allowLateSubmission,omitempty"`
	LateSubmissionPenalty *float64 `json:"lateSubmissionPenalty,omitempty"`
}

type RuleDetails struct {
	MaxSizeInBytes       *int64   `json:"maxSizeInBytes,omitempty"`
	AllowedExtensions    []string `json:"allowedExtensions,omitempty"`
	ForbiddenExtensions  []string `json:"forbiddenExtensions,omitempty"`
	ForbiddenDirectories []string `json:"forbiddenDirectories,omitempty"`
}

type CreateRuleRequest struct {
	DeliverableID int64       `json:"deliverableId" binding:"required"`
	RuleType      string      `json:"ruleType" binding:"required,oneof=SIZE_LIMIT FILE_PRESENCE DIRECTORY_STRUCTURE"`
	RuleDetails   RuleDetails `json:"ruleDetails"`
}

type UpdateRuleRequest struct {
	RuleType    *string      `json:"ruleType,omitempty"`
	RuleDetails *RuleDetails `json:"ruleDetails,omitempty"`
}

type ReportSection struct {
	ID              *int64  `json:"id,omitempty"`
	Title           string  `json:"title"`
	ContentMarkdown *string `json:"contentMarkdown,omitempty"`
	ContentHTML     *string `json:"contentHtml,omitempty"`
}

type CreateReportRequest struct {
	ProjectID   int64           `json:"projectId" binding:"required"`
	GroupID     int64           `json:"groupId" binding:"required"`
	PromotionID int64           `json:"promotionId" binding:"required"`
	Sections    []ReportSection `json:"sections"`
}

type UpdateReportRequest struct {
	Sections []ReportSection `json:"sections"`
}

type CriteriaRequest struct {
	Name       string  `json:"name" binding:"required"`
	Weight     float64 `json:"weight"`
	Type       string  `json:"type" binding:"required,oneof=DELIVERABLE REPORT PRESENTATION"`
	Individual bool    `json:"individual"`
}

type UpdateCriteriaRequest struct {
	Name       *string  `json:"name,omitempty"`
	Weight     *float64 `json:"weight,omitempty"`
	Type       *string  `json:"type,omitempty"`
	Individual *bool    `json:"individual,omitempty"`
}

type GradeRequest struct {
	GradingCriteriaID int64   `json:"gradingCriteriaId"`
	GroupID           *int64  `json:"groupId,omitempty"`
	StudentID         *int64  `json:"studentId,omitempty"`
	GradeValue        float64 `json:"gradeValue"`
	Comment           *string `json:"comment,omitempty"`
}

type FinalGradeRequest struct {
	UserID     int64   `json:"userId" binding:"required"`
	FinalGrade float64 `json:"finalGrade"`
	Comment    *string `json:"comment,omitempty"`
}

// EmptyRequest is sent where the backend expects a JSON object but no fields.
type EmptyRequest struct{}

type PresentationRequest struct {
	ProjectID        *int64  `json:"projectId,omitempty"`
	PromotionID      *int64  `json:"promotionId,omitempty"`
	StartDatetime    *string `json:"startDatetime,omitempty"`
	EndDatetime      *string `json:"endDatetime,omitempty"`
	DurationPerGroup *int    `json:"durationPerGroup,omitempty"`
}

type CreateOrderRequest struct {
	GroupID           int64  `json:"groupId" binding:"required"`
	OrderNumber       int    `json:"orderNumber" binding:"required,min=1"`
	ScheduledDatetime string `json:"scheduledDatetime" binding:"required"`
}

type UpdateOrderRequest struct {
	GroupID     *int64 `json:"groupId,omitempty"`
	OrderNumber *int   `json:"orderNumber,omitempty"`
}

type ReorderRequest struct {
	From int `json:"from" binding:"required,min=1"`
	To   int `json:"to" binding:"required,min=1"`
}

const (
	OrderAlgorithmSequential = "SEQUENTIAL"
	OrderAlgorithmRandom     = "RANDOM"
)

type GenerateOrdersInput struct {
	Algorithm   string `json:"algorithm,omitempty"`
	ShuffleSeed *int64 `json:"shuffleSeed,omitempty"`
}

type GenerateOrdersRequest struct {
	Algorithm   string  `json:"algorithm"`
	ShuffleSeed *int64  `json:"shuffleSeed,omitempty"`
	GroupIDs    []int64 `json:"groupIds"`
}

type PlagiarismCheckRequest struct {
	ProjectID   string `json:"projectId" binding:"required"`
	PromotionID string `json:"promotionId" binding:"required"`
	Step        string `json:"step" binding:"required"`
}

func (LoginRequest) payload()               {}
func (RefreshTokenRequest) payload()        {}
func (StudentRecords) payload()             {}
func (UpdateUserRequest) payload()          {}
func (UpdatePasswordRequest) payload()      {}
func (CreateProjectRequest) payload()       {}
func (UpdateProjectRequest) payload()       {}
func (UpdateProjectStatusRequest) payload() {}
func (CreateGroupsRequest) payload()        {}
func (UpdateGroupRequest) payload()         {}
func (StudentIDsRequest) payload()          {}
func (GroupSettingsRequest) payload()       {}
func (PromotionRecord) payload()            {}
func (UpdatePromotionRequest) payload()     {}
func (CreateDeliverableRequest) payload()   {}
func (UpdateDeliverableRequest) payload()   {}
func (CreateRuleRequest) payload()          {}
func (UpdateRuleRequest) payload()          {}
func (CreateReportRequest) payload()        {}
func (UpdateReportRequest) payload()        {}
func (ReportSection) payload()              {}
func (CriteriaRequest) payload()            {}
func (UpdateCriteriaRequest) payload()      {}
func (GradeRequest) payload()               {}
func (FinalGradeRequest) payload()          {}
func (EmptyRequest) payload()               {}
func (PresentationRequest) payload()        {}
func (CreateOrderRequest) payload()         {}
func (UpdateOrderRequest) payload()         {}
func (ReorderRequest) payload()             {}
func (GenerateOrdersRequest) payload()      {}
func (PlagiarismCheckRequest) payload()     {}
