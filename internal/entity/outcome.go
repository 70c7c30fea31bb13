package entity

// OutcomeStatus classifies what happened to one selected record in a run.
type OutcomeStatus string

const (
	OutcomeSaved          OutcomeStatus = "saved"
	OutcomeHTTPStatus     OutcomeStatus = "http_status"
	OutcomeFetchError     OutcomeStatus = "fetch_error"
	OutcomeNoImage        OutcomeStatus = "no_image"
	OutcomeDownloadFailed OutcomeStatus = "download_failed"
	OutcomeCancelled      OutcomeStatus = "cancelled"
)

// RecordOutcome is the per-record result of a batch run.
type RecordOutcome struct {
	EntryNumber    int64
	PageURL        string
	Status         OutcomeStatus
	HTTPStatusCode int
	Reason         string
}
