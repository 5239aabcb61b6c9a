package dataset

// Site is the news site every table below refers to.
const Site = "f1news.ru"

// Years covered by the reference tables.
var Years = []int{2014, 2015, 2016, 2017, 2018}

// TestingURIs lists the pre-season testing reports per year, in publication order.
var TestingURIs = map[string]map[int][]string{
	Site: {
		2014: {
			"Championship/2014/tests/91918.shtml",
			"Championship/2014/tests/92316.shtml",
			"Championship/2014/tests/92545.shtml",
		},
		2015: {
			"Championship/2015/tests/100942.shtml",
			"Championship/2015/tests/101278.shtml",
			"Championship/2015/tests/101460.shtml",
		},
		2016: {
			"Championship/2016/tests/110193.shtml",
			"Championship/2016/tests/110425.shtml",
		},
		2017: {
			"Championship/2017/tests/118950.shtml",
			"Championship/2017/tests/119022.shtml",
			"Championship/2017/tests/119147.shtml",
		},
		2018: {
			"Championship/2018/tests/127142.shtml",
			"Championship/2018/tests/127171.shtml",
			"Championship/2018/tests/127211.shtml",
			"Championship/2018/tests/127236.shtml",
			"Championship/2018/tests/127333.shtml",
			"Championship/2018/tests/127370.shtml",
			"Championship/2018/tests/127402.shtml",
			"Championship/2018/tests/127438.shtml",
		},
	},
}

// RaceCatalogURIs is the season calendar page per year.
var RaceCatalogURIs = map[string]map[int]string{
	Site: {
		2014: "Championship/2014/",
		2015: "Championship/2015/",
		2016: "Championship/2016/",
		2017: "Championship/2017/",
		2018: "Championship/2018/",
	},
}

// TeamPointsURIs is the final constructors' standings per year.
// 2018 is missing: the season was running when the tables were collected.
var TeamPointsURIs = map[string]map[int]string{
	Site: {
		2014: "Championship/2014/teampoints.shtml",
		2015: "Championship/2015/teampoints.shtml",
		2016: "Championship/2016/teampoints.shtml",
		2017: "Championship/2017/teampoints.shtml",
	},
}
