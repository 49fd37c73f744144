package main

import (
	"encoding/json"
	"io"

	"github.com/google/uuid"
	"github.com/ruiyangke/wirescript/wireparser"
)

// Minimal SARIF 2.1.0 model, just the fields editors and CI runners ingest.

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool       `json:"tool"`
	AutomationDetails sarifAutomation `json:"automationDetails"`
	Results           []sarifResult   `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string `json:"name"`
	InformationURI string `json:"informationUri,omitempty"`
}

type sarifAutomation struct {
	GUID string `json:"guid"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           *sarifRegion  `json:"region,omitempty"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

// writeSARIF emits all findings as a single SARIF run.
func writeSARIF(w io.Writer, findings []*fileFindings) error {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           "wirescript",
			InformationURI: "https://github.com/ruiyangke/wirescript",
		}},
		AutomationDetails: sarifAutomation{GUID: uuid.New().String()},
		Results:           []sarifResult{},
	}

	for _, ff := range findings {
		for _, e := range ff.parseErrs {
			run.Results = append(run.Results, sarifResultFor(ff.path, "parse", "error", e.Message, e.Pos))
		}
		if ff.validation == nil {
			continue
		}
		for _, d := range ff.validation.Errors {
			run.Results = append(run.Results, sarifResultFor(ff.path, d.Rule, "error", d.Message, d.Pos))
		}
		for _, d := range ff.validation.Warnings {
			run.Results = append(run.Results, sarifResultFor(ff.path, d.Rule, "warning", d.Message, d.Pos))
		}
	}

	log := sarifLog{
		Version: "2.1.0",
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Runs:    []sarifRun{run},
	}
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func sarifResultFor(path, rule, level, message string, pos wireparser.Position) sarifResult {
	loc := sarifLocation{PhysicalLocation: sarifPhysical{
		ArtifactLocation: sarifArtifact{URI: path},
	}}
	if pos.Line > 0 {
		loc.PhysicalLocation.Region = &sarifRegion{StartLine: pos.Line, StartColumn: pos.Column}
	}
	return sarifResult{
		RuleID:    rule,
		Level:     level,
		Message:   sarifMessage{Text: message},
		Locations: []sarifLocation{loc},
	}
}
