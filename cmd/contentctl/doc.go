// Command contentctl seeds and maintains Khmer course content: lessons,
// chapter summaries, the alphabet catalog and the audio files they refer
// to.
//
// Usage:
//
//	contentctl seed lessons/ch1.yaml --summary --reference
//	contentctl validate lessons/*.json
//	contentctl alphabet seed|audio|rules|modules
//	contentctl summary --module-id 1 lessons/ch1.yaml
//	contentctl audio filename អរគុណ --label "thank you"
//	contentctl audio reconcile --heal
//	contentctl migrate
//
// Configuration is read from config.yaml (or --config / CONFIG_PATH), .env
// files and the environment. Exit codes: 0 = success, 1 = error.
package main
