package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// DcmID is a Campaign Manager identifier.
//
// The backend serializes 64-bit ids either as JSON numbers or as strings, so both are accepted and the value is kept as its decimal string.
type DcmID string

// UnmarshalJSON accepts a JSON number, string or null.
func (id *DcmID) UnmarshalJSON(data []byte) error {
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
		*id = DcmID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid DCM id %s: %w", data, err)
	}
	*id = DcmID(n.String())
	return nil
}

// Int64 parses the id as a base-10 integer.
func (id DcmID) Int64() (int64, error) {
	return strconv.ParseInt(string(id), 10, 64)
}

func (id DcmID) String() string { return string(id) }

// DcmObject is a profile, account or floodlight configuration as returned by the /user endpoints.
type DcmObject struct {
	ID   DcmID  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Label renders the object for pickers, e.g. "Acme (1234)".
func (o DcmObject) Label() string {
	if o.Name == "" {
		return o.ID.String()
	}
	return fmt.Sprintf("%s (%s)", o.Name, o.ID)
}

// DcmObjectList is the envelope of every DCM listing endpoint. Items is nil when the backend omits it.
type DcmObjectList struct {
	Items []DcmObject `json:"items"`
}

// DcmInformation links a spreadsheet to its CM account and floodlight configuration.
type DcmInformation struct {
	AccountID                 DcmID `json:"accountId"`
	FloodlightConfigurationID DcmID `json:"floodlightConfigurationId"`
}
