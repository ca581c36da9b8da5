package memsource

import (
	"github.com/linnemanlabs/ward/internal/patient"
	"github.com/linnemanlabs/ward/internal/quiethours"
)

// SeedDemo loads the demo dataset used when no real upstream feeds are
// configured. Patient IDs follow the P2xxx scheme of the reference data.
func (s *Source) SeedDemo() {
	s.PutRecord(&patient.Record{
		PatientID:      "P2001",
		Age:            67,
		Gender:         "female",
		Specialty:      "cardiology",
		ChiefComplaint: "intermittent chest pain on exertion",
		Symptoms:       []string{"chest pain", "shortness of breath", "fatigue"},
		Diagnoses:      []string{"atrial fibrillation", "hypertension"},
		Medications:    []string{"warfarin", "metoprolol", "lisinopril"},
		LabResults:     map[string]float64{"inr": 2.8, "troponin": 0.02, "creatinine": 1.1},
		Allergies:      []string{"penicillin"},
	})
	s.PutCoverage(&patient.Coverage{
		PatientID:         "P2001",
		Payer:             "BlueShield",
		PlanType:          "PPO",
		PriorAuthRequired: []string{"MRI", "cardiac CT"},
		CoverageNotes:     "specialist visits covered after $40 copay",
	})
	s.PutAlerts(&patient.AlertRecord{
		PatientID:      "P2001",
		PubMedIDs:      []string{"38412345", "38519876"},
		StudySummaries: []string{"DOAC vs warfarin outcomes in elderly AF patients"},
		DrugAlerts: []patient.DrugAlert{
			{Drug: "warfarin", Relevance: patient.RelevanceHigh, PubMedLink: "https://pubmed.ncbi.nlm.nih.gov/38412345/"},
			{Drug: "metoprolol", Relevance: "low", PubMedLink: "https://pubmed.ncbi.nlm.nih.gov/38519876/"},
		},
		StudyAlerts: []patient.StudyAlert{
			{Condition: "atrial fibrillation", PubMedLink: "https://pubmed.ncbi.nlm.nih.gov/38501122/"},
		},
	})
	s.PutPreferences(&patient.Preferences{
		PatientID:        "P2001",
		PreferredContact: "sms",
		QuietHours:       quiethours.Window{Start: 21, End: 6},
		IntakeQuestions:  []string{"Any new symptoms since last visit?"},
		IntakeResponses:  []string{"Occasional dizziness in the morning."},
	})

	s.PutRecord(&patient.Record{
		PatientID:      "P2002",
		Age:            54,
		Gender:         "male",
		Specialty:      "endocrinology",
		ChiefComplaint: "poorly controlled blood sugar",
		Symptoms:       []string{"polyuria", "blurred vision"},
		Diagnoses:      []string{"type 2 diabetes", "hyperlipidemia"},
		Medications:    []string{"metformin", "atorvastatin"},
		LabResults:     map[string]float64{"hba1c": 8.9, "ldl": 142},
		Allergies:      nil,
	})
	s.PutCoverage(&patient.Coverage{
		PatientID:     "P2002",
		Payer:         "Aetna",
		PlanType:      "HMO",
		CoverageNotes: "CGM devices require documented hypoglycemia episodes",
	})
	s.PutAlerts(&patient.AlertRecord{
		PatientID: "P2002",
		DrugAlerts: []patient.DrugAlert{
			{Drug: "metformin", Relevance: "moderate", PubMedLink: "https://pubmed.ncbi.nlm.nih.gov/38477001/"},
		},
	})
	s.PutPreferences(&patient.Preferences{
		PatientID:        "P2002",
		PreferredContact: "email",
		QuietHours:       quiethours.Window{Start: 22, End: 7},
	})

	// P2003 has evidence but no preference record; the notification gate
	// fails soft for this patient.
	s.PutAlerts(&patient.AlertRecord{
		PatientID: "P2003",
		DrugAlerts: []patient.DrugAlert{
			{Drug: "apixaban", Relevance: patient.RelevanceHigh, PubMedLink: "https://pubmed.ncbi.nlm.nih.gov/38490033/"},
		},
	})
}
