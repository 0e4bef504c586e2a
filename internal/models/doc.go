// Package models defines wire types for the Floody backend API and the locally persisted entities of the terminal client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): structs decoded from or encoded to the backend REST API
//   - [DcmObject] : Campaign Manager profile, account or floodlight configuration
//   - [FloodySheet] : Generated spreadsheet metadata
//   - [UserAuthResponse] : A user's access to a spreadsheet and its linked CM account
//   - [GtmExportRequest], [GtmExport] : Tag Manager approval requests
//
// 2. Persistent Entities: sqlite-backed records replacing browser storage
//   - [Preference] : A single session key such as profileId
//   - [OAuthToken] : The signed-in user's OAuth token
//
// Persistent entities implement the [Model] interface and are stored through a [Repository].
package models
