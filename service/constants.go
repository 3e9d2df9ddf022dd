package service

const (
	// ProductLookupTimeoutSeconds bounds the catalog lookup of one request.
	ProductLookupTimeoutSeconds = 5

	// PublishTimeoutSeconds bounds the delivery of one envelope to the stream.
	PublishTimeoutSeconds = 10
)
