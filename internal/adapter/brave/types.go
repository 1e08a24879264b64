package brave

// webSearchResponse is the Brave /web/search payload, reduced to the fields
// the adapter maps.
type webSearchResponse struct {
	Query struct {
		Original string `json:"original"`
	} `json:"query"`
	Web *struct {
		Results []webResult `json:"results"`
	} `json:"web,omitempty"`
	News *struct {
		Results []newsResult `json:"results"`
	} `json:"news,omitempty"`
}

type webResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Age         string `json:"age,omitempty"`
	Profile     *struct {
		Img string `json:"img"`
	} `json:"profile,omitempty"`
}

type newsResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Age         string `json:"age,omitempty"`
	MetaURL     *struct {
		Hostname string `json:"hostname"`
	} `json:"meta_url,omitempty"`
	Thumbnail *struct {
		Src string `json:"src"`
	} `json:"thumbnail,omitempty"`
}

// videoSearchResponse is the Brave /videos/search payload.
type videoSearchResponse struct {
	Results []videoResult `json:"results"`
}

type videoResult struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Age       string `json:"age,omitempty"`
	Thumbnail *struct {
		Src string `json:"src"`
	} `json:"thumbnail,omitempty"`
	Video *struct {
		Duration string `json:"duration"`
		Views    any    `json:"views"`
	} `json:"video,omitempty"`
	MetaURL *struct {
		Hostname string `json:"hostname"`
	} `json:"meta_url,omitempty"`
}

// imageSearchResponse is the Brave /images/search payload.
type imageSearchResponse struct {
	Results []imageResult `json:"results"`
}

type imageResult struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Source    string `json:"source,omitempty"`
	Thumbnail *struct {
		Src string `json:"src"`
	} `json:"thumbnail,omitempty"`
	Properties *struct {
		URL    string `json:"url"`
		Width  int    `json:"width,omitempty"`
		Height int    `json:"height,omitempty"`
	} `json:"properties,omitempty"`
}

// errorResponse is Brave's error envelope.
type errorResponse struct {
	Error struct {
		Status int    `json:"status"`
		Detail string `json:"detail"`
	} `json:"error"`
}
