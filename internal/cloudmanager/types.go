package cloudmanager

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Program is a Cloud Manager program
type Program struct {
	ID   string
	Name string
}

// Environment is a deployable environment of a program
type Environment struct {
	ID     string
	Name   string
	Type   string
	Status string
}

// Site is an Edge Delivery domain mapping of a program
type Site struct {
	ID   string
	Name string
}

// ID accepts both JSON strings and numbers
type ID string

// UnmarshalJSON implements json.Unmarshaler
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

type programsResponse struct {
	Embedded struct {
		Programs []struct {
			ID   ID     `json:"id"`
			Name string `json:"name"`
		} `json:"programs"`
	} `json:"_embedded"`
}

type environmentsResponse struct {
	Embedded struct {
		Environments []struct {
			ID     ID     `json:"id"`
			Name   string `json:"name"`
			Type   string `json:"type"`
			Status string `json:"status"`
		} `json:"environments"`
	} `json:"_embedded"`
}

type domainMappingsResponse struct {
	DomainMappings []struct {
		DomainMappingID ID     `json:"domainMappingId"`
		DomainName      string `json:"domainName"`
	} `json:"domainMappings"`
}
