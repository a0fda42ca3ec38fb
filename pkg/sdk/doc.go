// Package symptodex embeds the symptom-to-diagnosis matching engine in a Go
// program without running the HTTP service.
//
// The client builds its model from the built-in condition catalog unless a
// catalog file or YAML document is supplied:
//
//	client, _ := symptodex.New(ctx,
//	    symptodex.WithConfidenceFloor(0.35),
//	    symptodex.WithTopK(3),
//	)
//	defer client.Close()
//
//	d, _ := client.Diagnose(ctx, []string{"high fever", "body ache", "cough"},
//	    symptodex.WithAge(70),
//	    symptodex.WithGender("female"),
//	)
//	for _, m := range d.Matches {
//	    fmt.Println(m.ConditionName, m.Confidence, m.Urgency)
//	}
//
// Results are screening hints, not medical diagnoses.
package symptodex
