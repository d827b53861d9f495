/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package card

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"

	"github.com/brendonion/fresh-blocks/pkg/common/errors/status"
	"github.com/pkg/errors"
)

const (
	metadataFile   = "metadata.json"
	connectionFile = "connection.json"
)

type archiveMetadata struct {
	Version          int      `json:"version"`
	UserName         string   `json:"userName"`
	BusinessNetwork  string   `json:"businessNetwork"`
	EnrollmentSecret string   `json:"enrollmentSecret"`
	Roles            []string `json:"roles"`
}

// FromArchive decodes a card archive into a Card. The archive is a zip
// holding metadata.json and connection.json; the connection profile is
// kept as raw bytes. The card's Name defaults to the archived user name
// and is normally overridden at import time.
func FromArchive(data []byte) (*Card, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, status.New(status.ClientStatus, status.MalformedCard.ToInt32(),
			"card archive is not a valid zip", []interface{}{err})
	}

	metadata, err := readArchiveFile(reader, metadataFile)
	if err != nil {
		return nil, err
	}
	profile, err := readArchiveFile(reader, connectionFile)
	if err != nil {
		return nil, err
	}

	var meta archiveMetadata
	if err := json.Unmarshal(metadata, &meta); err != nil {
		return nil, status.New(status.ClientStatus, status.MalformedCard.ToInt32(),
			"card archive metadata is not valid JSON", []interface{}{err})
	}
	if !json.Valid(profile) {
		return nil, status.New(status.ClientStatus, status.MalformedCard.ToInt32(),
			"card archive connection profile is not valid JSON", nil)
	}

	return &Card{
		Name:              meta.UserName,
		UserName:          meta.UserName,
		BusinessNetwork:   meta.BusinessNetwork,
		ConnectionProfile: json.RawMessage(profile),
		EnrollmentSecret:  meta.EnrollmentSecret,
		Roles:             meta.Roles,
		Version:           meta.Version,
	}, nil
}

// ToArchive encodes a card as a zip archive, the inverse of FromArchive.
func ToArchive(c *Card) ([]byte, error) {
	meta, err := json.Marshal(archiveMetadata{
		Version:          c.Version,
		UserName:         c.UserName,
		BusinessNetwork:  c.BusinessNetwork,
		EnrollmentSecret: c.EnrollmentSecret,
		Roles:            c.Roles,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal of card metadata failed")
	}

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	entries := []struct {
		name    string
		content []byte
	}{
		{metadataFile, meta},
		{connectionFile, c.ConnectionProfile},
	}
	for _, entry := range entries {
		f, err := writer.Create(entry.name)
		if err != nil {
			return nil, errors.Wrapf(err, "create of archive entry %s failed", entry.name)
		}
		if _, err := f.Write(entry.content); err != nil {
			return nil, errors.Wrapf(err, "write of archive entry %s failed", entry.name)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "close of card archive failed")
	}
	return buf.Bytes(), nil
}

func readArchiveFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "open of archive entry %s failed", name)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, status.New(status.ClientStatus, status.MalformedCard.ToInt32(),
		"card archive is missing "+name, nil)
}
