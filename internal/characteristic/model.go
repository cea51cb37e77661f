package characteristic

// ValueType declares how a characteristic's stored values are aggregated
type ValueType string

const (
	ValueTypeString  ValueType = "string"
	ValueTypeNumeric ValueType = "numeric"
	ValueTypeChoice  ValueType = "choice"
)

// Value is one respondent's stored value for a named characteristic
type Value struct {
	RespondentID int64     `json:"respondent_id"`
	Name         string    `json:"name"`
	ValueType    ValueType `json:"value_type"`
	Value        string    `json:"value"`
}
