package domain

type ServiceName string

const (
	ServiceAuth       ServiceName = "auth"
	ServiceProject    ServiceName = "project"
	ServiceFiles      ServiceName = "files"
	ServiceReport     ServiceName = "report"
	ServiceEvaluation ServiceName = "evaluation"
	ServiceNotif      ServiceName = "notif"
	ServicePlagiarism ServiceName = "plagiarism"
)

// ServiceNames lists every backend the gateway knows, in startup banner order.
func ServiceNames() []ServiceName {
	return []ServiceName{
		ServiceAuth,
		ServiceProject,
		ServiceFiles,
		ServiceReport,
		ServiceEvaluation,
		ServiceNotif,
		ServicePlagiarism,
	}
}

func (s ServiceName) IsKnown() bool {
	for _, n := range ServiceNames() {
		if n == s {
			return true
		}
	}
	return false
}

func (s ServiceName) String() string {
	return string(s)
}
