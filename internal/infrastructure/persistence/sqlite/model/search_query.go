package model

type SearchQuery struct {
	ID              string `gorm:"column:id;type:text;primaryKey"`
	TenantID        string `gorm:"column:tenant_id;type:text;not null"`
	Query           string `gorm:"column:query;type:text;not null"`
	ResultsReturned int64  `gorm:"column:results_returned;not null"`
	TotalResults    int64  `gorm:"column:total_results;not null"`
	InsertedTime    string `gorm:"column:inserted_time;type:text;not null"`
}

func (SearchQuery) TableName() string {
	return "search_queries"
}
