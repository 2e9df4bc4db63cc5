package entity

// ProviderGoogle is the provider name recorded for accounts established
// through Google Sign-In. Provider names double as the {provider} path
// segment of the social login routes.
const ProviderGoogle = "google"
