package handler

const (
	errInternalServer     = "Internal server error"
	errServiceUnavailable = "Service temporarily unavailable"
	errCompanyNotFound    = "Company not found"
	errDuplicateCompany   = "Company with this SIRET already exists"
	errRegistryRateLimit  = "Company registry rate limit reached, retry later"
)
