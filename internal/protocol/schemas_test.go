package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	moveSchema := compile("move.schema.json")
	viewportSchema := compile("viewport.schema.json")
	actSchema := compile("act.schema.json")
	resultSchema := compile("result.schema.json")
	stateSchema := compile("state.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "player_name":"bot1"
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "player_id":"P1",
	  "game_params":{
	    "seed":1337,
	    "cell_size":0.0001,
	    "proximity_radius":3,
	    "carry_slots":1,
	    "win_threshold":16,
	    "tick_rate_hz":5
	  }
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var move any
	_ = json.Unmarshal([]byte(`{
	  "type":"MOVE",
	  "protocol_version":"1.0",
	  "lat":51.50135,
	  "lng":-0.14189
	}`), &move)
	validate(moveSchema, move)

	var viewport any
	_ = json.Unmarshal([]byte(`{
	  "type":"VIEWPORT",
	  "protocol_version":"1.0",
	  "south":51.5010,
	  "north":51.5020,
	  "west":-0.1425,
	  "east":-0.1410
	}`), &viewport)
	validate(viewportSchema, viewport)

	var act any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACT",
	  "protocol_version":"1.0",
	  "id":"A1",
	  "verb":"PICKUP",
	  "cell":[515013,-1419]
	}`), &act)
	validate(actSchema, act)

	var result any
	_ = json.Unmarshal([]byte(`{
	  "type":"RESULT",
	  "ref":"A1",
	  "ok":false,
	  "code":"E_TOO_FAR",
	  "message":"target is 5 cells away",
	  "distance":5,
	  "required":3
	}`), &result)
	validate(resultSchema, result)

	var state any
	_ = json.Unmarshal([]byte(`{
	  "type":"STATE",
	  "tick":42,
	  "player_cell":[515013,-1419],
	  "cells":[
	    {"cell":[515013,-1418],"has_cache":true,"value":2,"interactable":true},
	    {"cell":[515014,-1418],"has_cache":false,"interactable":false}
	  ],
	  "carrying":[2],
	  "won":false
	}`), &state)
	validate(stateSchema, state)
}
