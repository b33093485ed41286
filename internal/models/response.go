package models

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type TokenResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
	Pages   int `json:"pages"`
}

type ProjectListResponse struct {
	Projects   []Project  `json:"projects"`
	Pagination Pagination `json:"pagination"`
}

type ProjectDetailResponse struct {
	Project    Project         `json:"project"`
	Iterations []Iteration     `json:"iterations"`
	Files      []GeneratedFile `json:"files"`
}

type RefineResponse struct {
	Refined  RefinedSpec `json:"refined"`
	Original string      `json:"original"`
}

type PlanResponse struct {
	Plan Plan `json:"plan"`
}

// GenerateSystemResponse reports file sizes rather than content; clients
// fetch content through the files endpoints.
type GenerateSystemResponse struct {
	Files           map[string]int `json:"files"`
	TotalFiles      int            `json:"total_files"`
	Review          ReviewReport   `json:"review"`
	RefactorMessage string         `json:"refactor_message"`
	IterationNumber int            `json:"iteration_number"`
}

type FileListResponse struct {
	Files []GeneratedFile `json:"files"`
}

type CollaboratorListResponse struct {
	Collaborators []Collaborator `json:"collaborators"`
}
